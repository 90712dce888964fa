package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/tripledger/internal/domain"
)

// PaymentUseCase handles direct payments between trip participants.
type PaymentUseCase struct {
	txManager   TransactionManager
	tripRepo    TripRepository
	paymentRepo PaymentRepository
	outboxRepo  OutboxRepository
	cache       Cache
	idGen       IDGenerator
}

// NewPaymentUseCase creates a new PaymentUseCase. cache may be nil.
func NewPaymentUseCase(
	txManager TransactionManager,
	tripRepo TripRepository,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		tripRepo:    tripRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		cache:       cache,
		idGen:       idGen,
	}
}

// RecordPaymentInput represents input for recording a payment.
type RecordPaymentInput struct {
	TripID     string
	ActorID    string
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	Method     string
	Note       string
}

// RecordPayment records money the caller sent to another participant.
func (uc *PaymentUseCase) RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error) {
	from := input.FromUserID
	if from == "" {
		from = input.ActorID
	}
	if from != input.ActorID {
		return nil, fmt.Errorf("%w: payments can only be recorded by their sender", domain.ErrForbidden)
	}

	method := strings.TrimSpace(input.Method)
	if method == "" {
		method = domain.DefaultPaymentMethod
	}
	if err := domain.ValidateDescription("note", input.Note); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:         uc.idGen.Generate(),
		TripID:     input.TripID,
		FromUserID: from,
		ToUserID:   input.ToUserID,
		Amount:     input.Amount,
		Method:     method,
		Note:       strings.TrimSpace(input.Note),
		CreatedAt:  now,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(payment.Amount); err != nil {
		return nil, err
	}

	if _, err := requireParticipant(ctx, uc.tripRepo, input.TripID, from); err != nil {
		return nil, err
	}
	if _, err := uc.tripRepo.GetParticipant(ctx, input.TripID, payment.ToUserID); err != nil {
		return nil, fmt.Errorf("recipient %s: %w", payment.ToUserID, err)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(txCtx)

	if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
		return nil, err
	}

	event := newEvent(uc.idGen, input.TripID, domain.EventTypePaymentRecorded, domain.PaymentRecordedPayload(payment), now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, uc.cache, input.TripID)

	return payment, nil
}

// ListPayments lists a trip's payments for one of its members.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, tripID, userID string) ([]*domain.Payment, error) {
	if _, err := requireParticipant(ctx, uc.tripRepo, tripID, userID); err != nil {
		return nil, err
	}
	return uc.paymentRepo.ListByTrip(ctx, tripID)
}
