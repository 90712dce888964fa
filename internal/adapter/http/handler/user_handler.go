package handler

import (
	"context"
	"net/http"

	"github.com/iho/tripledger/internal/adapter/http/dto"
	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
)

// UserService defines the behavior needed by UserHandler.
type UserService interface {
	SyncProfile(ctx context.Context, input usecase.SyncProfileInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// UserHandler serves the caller's own profile.
type UserHandler struct {
	userUC UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userUC UserService) *UserHandler {
	return &UserHandler{userUC: userUC}
}

// Me returns the caller's stored profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stored, err := h.userUC.GetUser(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, "failed to get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(stored))
}

// UpdateMe updates the caller's profile. Empty fields keep their value.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.userUC.SyncProfile(r.Context(), req.ToUseCaseInput(user.ID)); err != nil {
		writeDomainError(w, r, "failed to update profile", err)
		return
	}

	stored, err := h.userUC.GetUser(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, "failed to get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(stored))
}
