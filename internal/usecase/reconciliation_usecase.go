package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/ledger"
	"github.com/iho/tripledger/internal/money"
)

// ReconciliationUseCase checks that a trip's stored records are consistent.
type ReconciliationUseCase struct {
	loader     snapshotLoader
	tripRepo   TripRepository
	txManager  TransactionManager
	outboxRepo OutboxRepository
	idGen      IDGenerator
	engine     *ledger.Engine
	metrics    LedgerMetrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	tripRepo TripRepository,
	expenseRepo ExpenseRepository,
	paymentRepo PaymentRepository,
	txManager TransactionManager,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	engine *ledger.Engine,
	metrics LedgerMetrics,
) *ReconciliationUseCase {
	if engine == nil {
		engine = ledger.New()
	}
	return &ReconciliationUseCase{
		loader:     snapshotLoader{tripRepo: tripRepo, expenseRepo: expenseRepo, paymentRepo: paymentRepo},
		tripRepo:   tripRepo,
		txManager:  txManager,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		engine:     engine,
		metrics:    metrics,
	}
}

// ConsistencyReport is the outcome of a trip consistency check
type ConsistencyReport struct {
	TripID               string
	Consistent           bool
	TotalResidual        money.Amount
	BalanceSum           money.Amount
	ExpenseDiscrepancies []ledger.Discrepancy
	CheckedAt            time.Time
	Error                string
}

// CheckTripAsMember runs CheckTrip for a participant of the trip.
func (uc *ReconciliationUseCase) CheckTripAsMember(ctx context.Context, tripID, userID string) (*ConsistencyReport, error) {
	if _, err := requireParticipant(ctx, uc.tripRepo, tripID, userID); err != nil {
		return nil, err
	}
	return uc.CheckTrip(ctx, tripID)
}

// CheckTrip runs the engine over a trip's records and reports every share
// discrepancy and invariant failure. Inconsistent trips are announced with a
// ledger.inconsistent event.
func (uc *ReconciliationUseCase) CheckTrip(ctx context.Context, tripID string) (*ConsistencyReport, error) {
	tl, err := uc.loader.load(ctx, tripID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rec, err := uc.engine.Reconcile(tl.Snapshot())
	if uc.metrics != nil {
		uc.metrics.ObserveCompute(time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		TripID:               tripID,
		Consistent:           rec.Consistent,
		TotalResidual:        rec.TotalResidual,
		BalanceSum:           rec.BalanceSum,
		ExpenseDiscrepancies: rec.Discrepancies,
		CheckedAt:            time.Now().UTC(),
	}
	if rec.Violation != nil {
		report.Error = rec.Violation.Error()
	}

	if !report.Consistent {
		uc.announce(ctx, report, rec.Violation)
	}

	return report, nil
}

func (uc *ReconciliationUseCase) announce(ctx context.Context, report *ConsistencyReport, violation error) {
	logger := log.With().Str("trip_id", report.TripID).Int("discrepancies", len(report.ExpenseDiscrepancies)).Logger()

	if ledger.IsInvariantViolation(violation) {
		logger.Error().Err(violation).Msg("ledger invariant violated")
		if uc.metrics != nil {
			uc.metrics.IncInvariantViolation()
		}
	} else {
		logger.Warn().Err(violation).Msg("trip ledger is inconsistent")
	}

	if uc.txManager == nil || uc.outboxRepo == nil {
		return
	}

	event := newEvent(uc.idGen, report.TripID, domain.EventTypeLedgerInconsistent, map[string]any{
		"error":          report.Error,
		"discrepancies":  len(report.ExpenseDiscrepancies),
		"total_residual": report.TotalResidual.String(),
	}, report.CheckedAt)

	if err := uc.writeEvent(ctx, event); err != nil {
		logger.Error().Err(err).Msg("failed to record inconsistency event")
	}
}

func (uc *ReconciliationUseCase) writeEvent(ctx context.Context, event *domain.Event) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(txCtx)

	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}
