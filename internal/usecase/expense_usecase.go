package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/ledger"
	"github.com/iho/tripledger/internal/money"
)

// ExpenseUseCase handles recording and listing trip expenses.
type ExpenseUseCase struct {
	txManager   TransactionManager
	tripRepo    TripRepository
	expenseRepo ExpenseRepository
	outboxRepo  OutboxRepository
	cache       Cache
	idGen       IDGenerator
	retrier     Retrier
}

// NewExpenseUseCase creates a new ExpenseUseCase. cache may be nil.
func NewExpenseUseCase(
	txManager TransactionManager,
	tripRepo TripRepository,
	expenseRepo ExpenseRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
	retrier Retrier,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		txManager:   txManager,
		tripRepo:    tripRepo,
		expenseRepo: expenseRepo,
		outboxRepo:  outboxRepo,
		cache:       cache,
		idGen:       idGen,
		retrier:     retrier,
	}
}

// SplitInput is one participant's part of an exact or percentage split.
type SplitInput struct {
	UserID  string
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

// AddExpenseInput represents input for recording an expense.
type AddExpenseInput struct {
	TripID       string
	ActorID      string
	PaidByUserID string
	Description  string
	Category     string
	Amount       decimal.Decimal
	SplitType    domain.SplitType
	// ParticipantIDs selects who shares an equal split; empty means everyone.
	ParticipantIDs []string
	Splits         []SplitInput
}

// AddExpense records an expense and its shares.
func (uc *ExpenseUseCase) AddExpense(ctx context.Context, input AddExpenseInput) (*domain.Expense, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateDescription("description", input.Description); err != nil {
		return nil, err
	}

	splitType := input.SplitType
	if splitType == "" {
		splitType = domain.SplitTypeEqual
	}
	if !splitType.IsValid() {
		return nil, fmt.Errorf("%w: unknown split type %q", domain.ErrInvalidInput, splitType)
	}

	if _, err := requireParticipant(ctx, uc.tripRepo, input.TripID, input.ActorID); err != nil {
		return nil, err
	}

	participants, err := uc.tripRepo.ListParticipants(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	members := make(map[string]bool, len(participants))
	for _, p := range participants {
		members[p.User.ID] = true
	}

	payer := input.PaidByUserID
	if payer == "" {
		payer = input.ActorID
	}
	if !members[payer] {
		return nil, fmt.Errorf("%w: payer %s", domain.ErrNotParticipant, payer)
	}

	req, err := buildSplitRequest(splitType, input, participants, members)
	if err != nil {
		return nil, err
	}

	allocations, err := ledger.Allocate(splitType, input.Amount, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expense := &domain.Expense{
		ID:           uc.idGen.Generate(),
		TripID:       input.TripID,
		Description:  strings.TrimSpace(input.Description),
		Category:     strings.TrimSpace(input.Category),
		PaidByUserID: payer,
		Amount:       input.Amount,
		CreatedAt:    now,
	}
	for _, a := range allocations {
		expense.Shares = append(expense.Shares, domain.Share{
			ExpenseID: expense.ID,
			UserID:    a.UserID,
			Amount:    a.Amount.Decimal(),
		})
	}

	if err := expense.Validate(); err != nil {
		return nil, err
	}

	event := newEvent(uc.idGen, input.TripID, domain.EventTypeExpenseCreated, domain.ExpenseCreatedPayload(expense), now)

	err = uc.retrier.Retry(ctx, func() error {
		return uc.persist(ctx, expense, event)
	})
	if err != nil {
		return nil, err
	}

	invalidateDashboard(ctx, uc.cache, input.TripID)

	return expense, nil
}

func (uc *ExpenseUseCase) persist(ctx context.Context, expense *domain.Expense, event *domain.Event) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(txCtx)

	if err := uc.expenseRepo.Create(txCtx, tx, expense); err != nil {
		return err
	}

	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

// ListExpenses lists a trip's expenses with their shares.
func (uc *ExpenseUseCase) ListExpenses(ctx context.Context, tripID, userID string) ([]*domain.Expense, error) {
	if _, err := requireParticipant(ctx, uc.tripRepo, tripID, userID); err != nil {
		return nil, err
	}
	return uc.expenseRepo.ListByTrip(ctx, tripID)
}

func buildSplitRequest(
	splitType domain.SplitType,
	input AddExpenseInput,
	participants []*domain.Participant,
	members map[string]bool,
) (ledger.SplitRequest, error) {
	var req ledger.SplitRequest

	switch splitType {
	case domain.SplitTypeEqual:
		ids := input.ParticipantIDs
		if len(ids) == 0 {
			for _, p := range participants {
				ids = append(ids, p.User.ID)
			}
		}
		for _, id := range ids {
			if !members[id] {
				return req, fmt.Errorf("%w: %s", domain.ErrNotParticipant, id)
			}
		}
		req.ParticipantIDs = ids

	case domain.SplitTypeExact:
		if len(input.Splits) == 0 {
			return req, fmt.Errorf("%w: exact split needs at least one share", domain.ErrInvalidInput)
		}
		for _, s := range input.Splits {
			if !members[s.UserID] {
				return req, fmt.Errorf("%w: %s", domain.ErrNotParticipant, s.UserID)
			}
			if err := domain.ValidatePrecision(s.Amount); err != nil {
				return req, fmt.Errorf("share of %s: %w", s.UserID, err)
			}
			amount, err := money.FromDecimal(s.Amount)
			if err != nil {
				return req, err
			}
			req.Exact = append(req.Exact, ledger.Allocation{UserID: s.UserID, Amount: amount})
		}

	case domain.SplitTypePercentage:
		for _, s := range input.Splits {
			if !members[s.UserID] {
				return req, fmt.Errorf("%w: %s", domain.ErrNotParticipant, s.UserID)
			}
			if err := domain.ValidatePercent(s.Percent); err != nil {
				return req, fmt.Errorf("share of %s: %w", s.UserID, err)
			}
			req.Percentages = append(req.Percentages, ledger.PercentageSplit{UserID: s.UserID, Percent: s.Percent})
		}
	}

	return req, nil
}

// invalidateDashboard bumps the ledger version of a trip so that dashboards
// cached under an older version are never served again. A failure only
// leaves a stale entry until its TTL runs out.
func invalidateDashboard(ctx context.Context, cache Cache, tripID string) {
	if cache == nil {
		return
	}
	if _, err := cache.Incr(ctx, DashboardVersionKey(tripID)); err != nil {
		log.Warn().Err(err).Str("trip_id", tripID).Msg("failed to invalidate dashboard cache")
	}
}
