package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/ledger"
)

// TripLedger is a trip's records together with the engine report computed
// from them.
type TripLedger struct {
	Trip         *domain.Trip
	Participants []*domain.Participant
	Expenses     []*domain.Expense
	Payments     []*domain.Payment
	Report       *ledger.Report
}

// Snapshot converts the records to engine input, users in join order.
func (tl *TripLedger) Snapshot() ledger.Snapshot {
	users := make([]domain.User, len(tl.Participants))
	for i, p := range tl.Participants {
		users[i] = p.User
	}
	expenses := make([]domain.Expense, len(tl.Expenses))
	for i, e := range tl.Expenses {
		expenses[i] = *e
	}
	payments := make([]domain.Payment, len(tl.Payments))
	for i, p := range tl.Payments {
		payments[i] = *p
	}
	return ledger.NewSnapshot(users, expenses, payments)
}

// Dashboard is the trip ledger as seen by one participant.
type Dashboard struct {
	TripLedger
	UserView ledger.UserView
}

// snapshotLoader fetches every record of a trip concurrently.
type snapshotLoader struct {
	tripRepo    TripRepository
	expenseRepo ExpenseRepository
	paymentRepo PaymentRepository
}

func (l snapshotLoader) load(ctx context.Context, tripID string) (*TripLedger, error) {
	tl := &TripLedger{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tl.Trip, err = l.tripRepo.GetByID(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		tl.Participants, err = l.tripRepo.ListParticipants(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		tl.Expenses, err = l.expenseRepo.ListByTrip(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		tl.Payments, err = l.paymentRepo.ListByTrip(gctx, tripID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tl, nil
}

// DashboardUseCase computes balances and settlement plans for trips.
type DashboardUseCase struct {
	loader   snapshotLoader
	tripRepo TripRepository
	engine   *ledger.Engine
	cache    Cache
	cacheTTL time.Duration
	metrics  LedgerMetrics
}

// NewDashboardUseCase creates a new DashboardUseCase. cache and metrics may be
// nil; a cacheTTL of zero disables caching.
func NewDashboardUseCase(
	tripRepo TripRepository,
	expenseRepo ExpenseRepository,
	paymentRepo PaymentRepository,
	engine *ledger.Engine,
	cache Cache,
	cacheTTL time.Duration,
	metrics LedgerMetrics,
) *DashboardUseCase {
	if engine == nil {
		engine = ledger.New()
	}
	return &DashboardUseCase{
		loader:   snapshotLoader{tripRepo: tripRepo, expenseRepo: expenseRepo, paymentRepo: paymentRepo},
		tripRepo: tripRepo,
		engine:   engine,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
	}
}

// GetDashboard returns the trip ledger with the caller's own view.
func (uc *DashboardUseCase) GetDashboard(ctx context.Context, tripID, userID string) (*Dashboard, error) {
	if _, err := requireParticipant(ctx, uc.tripRepo, tripID, userID); err != nil {
		return nil, err
	}

	tl, err := uc.tripLedger(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TripLedger: *tl,
		UserView:   tl.Report.PerUser(userID),
	}, nil
}

func (uc *DashboardUseCase) tripLedger(ctx context.Context, tripID string) (*TripLedger, error) {
	// The version is read before loading so that a write committed during
	// the load is never stored under the version that follows it.
	version, versioned := uc.cacheVersion(ctx, tripID)
	if versioned {
		if tl, ok := uc.cached(ctx, tripID, version); ok {
			return tl, nil
		}
	}

	tl, err := uc.loader.load(ctx, tripID)
	if err != nil {
		return nil, err
	}

	tl.Report, err = compute(uc.engine, uc.metrics, tripID, tl.Snapshot())
	if err != nil {
		return nil, err
	}

	if versioned {
		uc.store(ctx, tripID, version, tl)
	}

	return tl, nil
}

// cacheVersion reads the trip's ledger version. A missing counter is
// version zero.
func (uc *DashboardUseCase) cacheVersion(ctx context.Context, tripID string) (int64, bool) {
	if uc.cache == nil || uc.cacheTTL <= 0 {
		return 0, false
	}

	data, err := uc.cache.Get(ctx, DashboardVersionKey(tripID))
	if err != nil {
		log.Warn().Err(err).Str("trip_id", tripID).Msg("failed to read dashboard cache version")
		return 0, false
	}
	if data == nil {
		return 0, true
	}

	version, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		log.Warn().Err(err).Str("trip_id", tripID).Msg("unreadable dashboard cache version")
		return 0, false
	}
	return version, true
}

func (uc *DashboardUseCase) cached(ctx context.Context, tripID string, version int64) (*TripLedger, bool) {
	data, err := uc.cache.Get(ctx, DashboardCacheKey(tripID, version))
	if err != nil || data == nil {
		return nil, false
	}

	var tl TripLedger
	if err := json.Unmarshal(data, &tl); err != nil || tl.Report == nil {
		log.Warn().Err(err).Str("trip_id", tripID).Msg("discarding unreadable dashboard cache entry")
		return nil, false
	}

	return &tl, true
}

// store caches tl under the version it was loaded at, unless a write has
// bumped the version since.
func (uc *DashboardUseCase) store(ctx context.Context, tripID string, version int64, tl *TripLedger) {
	if current, ok := uc.cacheVersion(ctx, tripID); !ok || current != version {
		return
	}

	data, err := json.Marshal(tl)
	if err != nil {
		log.Warn().Err(err).Str("trip_id", tripID).Msg("failed to encode dashboard for cache")
		return
	}

	if err := uc.cache.Set(ctx, DashboardCacheKey(tripID, version), data, uc.cacheTTL); err != nil {
		log.Warn().Err(err).Str("trip_id", tripID).Msg("failed to cache dashboard")
	}
}

// compute runs the engine, recording duration and invariant failures.
func compute(engine *ledger.Engine, metrics LedgerMetrics, tripID string, snap ledger.Snapshot) (*ledger.Report, error) {
	start := time.Now()
	report, err := engine.Compute(snap)
	if metrics != nil {
		metrics.ObserveCompute(time.Since(start), err)
	}

	if err != nil {
		if errors.Is(err, domain.ErrUnbalancedLedger) {
			log.Error().Err(err).Str("trip_id", tripID).Msg("ledger invariant violated")
			if metrics != nil {
				metrics.IncInvariantViolation()
			}
			return nil, err
		}
		// Records were validated on write, so a rejected snapshot means the
		// stored data is damaged, not that the caller sent a bad request.
		log.Error().Err(err).Str("trip_id", tripID).Msg("stored ledger records rejected")
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptLedger, err)
	}

	return report, nil
}
