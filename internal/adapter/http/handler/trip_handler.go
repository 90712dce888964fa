package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tripledger/internal/adapter/http/dto"
	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
)

// TripService defines the behavior needed by TripHandler.
type TripService interface {
	CreateTrip(ctx context.Context, input usecase.CreateTripInput) (*domain.Trip, error)
	GetTrip(ctx context.Context, tripID, userID string) (*domain.Trip, error)
	ListTrips(ctx context.Context, userID string, limit, offset int) ([]*domain.Trip, error)
	AddParticipant(ctx context.Context, input usecase.AddParticipantInput) (*domain.Participant, error)
	ListParticipants(ctx context.Context, tripID, userID string) ([]*domain.Participant, error)
}

// TripHandler handles trip and membership HTTP requests.
type TripHandler struct {
	tripUC TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripUC TripService) *TripHandler {
	return &TripHandler{tripUC: tripUC}
}

// Create creates a trip with the caller as its admin.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := h.tripUC.CreateTrip(r.Context(), req.ToUseCaseInput(user.ID))
	if err != nil {
		writeDomainError(w, r, "failed to create trip", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TripFromDomain(trip))
}

// List lists the caller's trips, newest first.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)

	trips, err := h.tripUC.ListTrips(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeDomainError(w, r, "failed to list trips", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TripsFromDomain(trips))
}

// Get returns one trip the caller belongs to.
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	trip, err := h.tripUC.GetTrip(r.Context(), chi.URLParam(r, "tripID"), user.ID)
	if err != nil {
		writeDomainError(w, r, "failed to get trip", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TripFromDomain(trip))
}

// AddParticipant adds a user to the trip. Only admins may do this.
func (h *TripHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.AddParticipantRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	participant, err := h.tripUC.AddParticipant(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "tripID"), user.ID))
	if err != nil {
		writeDomainError(w, r, "failed to add participant", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ParticipantFromDomain(participant))
}

// ListParticipants lists the trip's members in join order.
func (h *TripHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	participants, err := h.tripUC.ListParticipants(r.Context(), chi.URLParam(r, "tripID"), user.ID)
	if err != nil {
		writeDomainError(w, r, "failed to list participants", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ParticipantsFromDomain(participants))
}
