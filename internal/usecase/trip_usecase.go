package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iho/tripledger/internal/domain"
)

// DefaultCurrency is used for trips created without a currency.
const DefaultCurrency = "USD"

// TripUseCase handles trips and their membership.
type TripUseCase struct {
	txManager  TransactionManager
	tripRepo   TripRepository
	userRepo   UserRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
}

// NewTripUseCase creates a new TripUseCase.
func NewTripUseCase(
	txManager TransactionManager,
	tripRepo TripRepository,
	userRepo UserRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *TripUseCase {
	return &TripUseCase{
		txManager:  txManager,
		tripRepo:   tripRepo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
	}
}

// CreateTripInput represents input for creating a trip.
type CreateTripInput struct {
	CreatorID   string
	Name        string
	Description string
	Currency    string
}

// CreateTrip creates a trip and makes its creator the first admin.
func (uc *TripUseCase) CreateTrip(ctx context.Context, input CreateTripInput) (*domain.Trip, error) {
	if err := domain.ValidateTripName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription("description", input.Description); err != nil {
		return nil, err
	}

	currency := input.Currency
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}
	currency, err := domain.NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	creator, err := uc.userRepo.GetByID(ctx, input.CreatorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	trip := &domain.Trip{
		ID:          uc.idGen.Generate(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Currency:    currency,
		CreatedBy:   creator.ID,
		CreatedAt:   now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(txCtx)

	if err := uc.tripRepo.Create(txCtx, tx, trip); err != nil {
		return nil, err
	}

	if err := uc.tripRepo.AddParticipant(txCtx, tx, &domain.Participant{
		TripID:   trip.ID,
		User:     *creator,
		Role:     domain.RoleAdmin,
		JoinedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return trip, nil
}

// GetTrip returns a trip the user takes part in.
func (uc *TripUseCase) GetTrip(ctx context.Context, tripID, userID string) (*domain.Trip, error) {
	trip, err := uc.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.tripRepo.GetParticipant(ctx, tripID, userID); err != nil {
		return nil, err
	}

	return trip, nil
}

// ListTrips lists the trips a user takes part in.
func (uc *TripUseCase) ListTrips(ctx context.Context, userID string, limit, offset int) ([]*domain.Trip, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.tripRepo.ListByUser(ctx, userID, limit, offset)
}

// AddParticipantInput represents input for adding a user to a trip.
type AddParticipantInput struct {
	TripID  string
	ActorID string
	UserID  string
	Role    domain.Role
}

// AddParticipant adds a user to a trip. Only trip admins may do this.
func (uc *TripUseCase) AddParticipant(ctx context.Context, input AddParticipantInput) (*domain.Participant, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	actor, err := requireParticipant(ctx, uc.tripRepo, input.TripID, input.ActorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	user, err := uc.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	_, err = uc.tripRepo.GetParticipant(ctx, input.TripID, input.UserID)
	switch {
	case err == nil:
		return nil, domain.ErrAlreadyParticipant
	case !errors.Is(err, domain.ErrNotParticipant):
		return nil, err
	}

	now := time.Now().UTC()
	participant := &domain.Participant{
		TripID:   input.TripID,
		User:     *user,
		Role:     role,
		JoinedAt: now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(txCtx)

	if err := uc.tripRepo.AddParticipant(txCtx, tx, participant); err != nil {
		return nil, err
	}

	event := newEvent(uc.idGen, input.TripID, domain.EventTypeParticipantAdded, domain.ParticipantAddedPayload(participant), now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return participant, nil
}

// ListParticipants lists a trip's participants for one of its members.
func (uc *TripUseCase) ListParticipants(ctx context.Context, tripID, userID string) ([]*domain.Participant, error) {
	if _, err := requireParticipant(ctx, uc.tripRepo, tripID, userID); err != nil {
		return nil, err
	}
	return uc.tripRepo.ListParticipants(ctx, tripID)
}

// requireParticipant resolves the trip first so that unknown trips report
// ErrTripNotFound rather than ErrNotParticipant.
func requireParticipant(ctx context.Context, repo TripRepository, tripID, userID string) (*domain.Participant, error) {
	if _, err := repo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}
	return repo.GetParticipant(ctx, tripID, userID)
}

func newEvent(idGen IDGenerator, tripID, eventType string, payload map[string]any, at time.Time) *domain.Event {
	return &domain.Event{
		ID:         idGen.Generate(),
		TripID:     tripID,
		Type:       eventType,
		Payload:    payload,
		OccurredAt: at,
	}
}
