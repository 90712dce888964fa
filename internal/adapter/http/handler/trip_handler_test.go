package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/iho/tripledger/internal/adapter/http/dto"
	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
)

type tripServiceStub struct {
	createFn           func(ctx context.Context, input usecase.CreateTripInput) (*domain.Trip, error)
	getFn              func(ctx context.Context, tripID, userID string) (*domain.Trip, error)
	listFn             func(ctx context.Context, userID string, limit, offset int) ([]*domain.Trip, error)
	addParticipantFn   func(ctx context.Context, input usecase.AddParticipantInput) (*domain.Participant, error)
	listParticipantsFn func(ctx context.Context, tripID, userID string) ([]*domain.Participant, error)
}

func (s *tripServiceStub) CreateTrip(ctx context.Context, input usecase.CreateTripInput) (*domain.Trip, error) {
	return s.createFn(ctx, input)
}

func (s *tripServiceStub) GetTrip(ctx context.Context, tripID, userID string) (*domain.Trip, error) {
	return s.getFn(ctx, tripID, userID)
}

func (s *tripServiceStub) ListTrips(ctx context.Context, userID string, limit, offset int) ([]*domain.Trip, error) {
	return s.listFn(ctx, userID, limit, offset)
}

func (s *tripServiceStub) AddParticipant(ctx context.Context, input usecase.AddParticipantInput) (*domain.Participant, error) {
	return s.addParticipantFn(ctx, input)
}

func (s *tripServiceStub) ListParticipants(ctx context.Context, tripID, userID string) ([]*domain.Participant, error) {
	return s.listParticipantsFn(ctx, tripID, userID)
}

func TestTripHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateTripInput
	h := NewTripHandler(&tripServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTripInput) (*domain.Trip, error) {
			captured = input
			return &domain.Trip{ID: "t1", Name: input.Name, Currency: "EUR", CreatedBy: input.CreatorID}, nil
		},
	})

	rec := serve(t, http.MethodPost, "/trips", "/trips", "alice",
		dto.CreateTripRequest{Name: "Lisbon", Currency: "eur"}, h.Create)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.CreatorID != "alice" || captured.Name != "Lisbon" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	resp := decode[dto.TripResponse](t, rec)
	if resp.ID != "t1" || resp.CreatedBy != "alice" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTripHandler_Create_Errors(t *testing.T) {
	h := NewTripHandler(&tripServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTripInput) (*domain.Trip, error) {
			return nil, domain.ErrInvalidCurrency
		},
	})

	if rec := serve(t, http.MethodPost, "/trips", "/trips", "alice", "{bad", h.Create); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
	if rec := serve(t, http.MethodPost, "/trips", "/trips", "", dto.CreateTripRequest{}, h.Create); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	rec := serve(t, http.MethodPost, "/trips", "/trips", "alice", dto.CreateTripRequest{Name: "x", Currency: "euro"}, h.Create)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid currency, got %d", rec.Code)
	}
	if resp := decode[dto.ErrorResponse](t, rec); resp.Message != domain.ErrInvalidCurrency.Error() {
		t.Fatalf("expected domain error message, got %+v", resp)
	}
}

func TestTripHandler_List_Pagination(t *testing.T) {
	var gotLimit, gotOffset int
	h := NewTripHandler(&tripServiceStub{
		listFn: func(ctx context.Context, userID string, limit, offset int) ([]*domain.Trip, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.Trip{{ID: "t1"}, {ID: "t2"}}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/trips", "/trips?limit=1000&offset=5", "alice", nil, h.List)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLimit != maxPageSize || gotOffset != 5 {
		t.Fatalf("expected clamped pagination, got %d/%d", gotLimit, gotOffset)
	}
	if resp := decode[[]dto.TripResponse](t, rec); len(resp) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(resp))
	}
}

func TestTripHandler_Get(t *testing.T) {
	h := NewTripHandler(&tripServiceStub{
		getFn: func(ctx context.Context, tripID, userID string) (*domain.Trip, error) {
			if userID != "alice" {
				return nil, domain.ErrNotParticipant
			}
			return &domain.Trip{ID: tripID}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/trips/{tripID}", "/trips/t1", "alice", nil, h.Get)
	if rec.Code != http.StatusOK || decode[dto.TripResponse](t, rec).ID != "t1" {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}

	if rec := serve(t, http.MethodGet, "/trips/{tripID}", "/trips/t1", "mallory", nil, h.Get); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestTripHandler_AddParticipant(t *testing.T) {
	var captured usecase.AddParticipantInput
	h := NewTripHandler(&tripServiceStub{
		addParticipantFn: func(ctx context.Context, input usecase.AddParticipantInput) (*domain.Participant, error) {
			captured = input
			if input.UserID == "bob" {
				return nil, domain.ErrAlreadyParticipant
			}
			return &domain.Participant{TripID: input.TripID, User: domain.User{ID: input.UserID}, Role: domain.RoleMember}, nil
		},
	})

	rec := serve(t, http.MethodPost, "/trips/{tripID}/participants", "/trips/t1/participants", "alice",
		dto.AddParticipantRequest{UserID: "carol"}, h.AddParticipant)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.TripID != "t1" || captured.ActorID != "alice" || captured.UserID != "carol" {
		t.Fatalf("unexpected input %+v", captured)
	}
	if resp := decode[dto.ParticipantResponse](t, rec); resp.UserID != "carol" || resp.Role != "member" {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = serve(t, http.MethodPost, "/trips/{tripID}/participants", "/trips/t1/participants", "alice",
		dto.AddParticipantRequest{UserID: "bob"}, h.AddParticipant)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestTripHandler_ListParticipants(t *testing.T) {
	h := NewTripHandler(&tripServiceStub{
		listParticipantsFn: func(ctx context.Context, tripID, userID string) ([]*domain.Participant, error) {
			if tripID != "t1" {
				return nil, domain.ErrTripNotFound
			}
			return []*domain.Participant{
				{User: domain.User{ID: "alice", Name: "Alice"}, Role: domain.RoleAdmin},
				{User: domain.User{ID: "bob"}, Role: domain.RoleMember},
			}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/trips/{tripID}/participants", "/trips/t1/participants", "alice", nil, h.ListParticipants)
	resp := decode[[]dto.ParticipantResponse](t, rec)
	if len(resp) != 2 || resp[0].Name != "Alice" || resp[1].UserID != "bob" {
		t.Fatalf("unexpected participants %+v", resp)
	}

	rec = serve(t, http.MethodGet, "/trips/{tripID}/participants", "/trips/nope/participants", "alice", nil, h.ListParticipants)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
