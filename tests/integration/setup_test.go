package integration

import (
	"context"
	"testing"

	"github.com/iho/tripledger/internal/adapter/repository/postgres"
	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/ledger"
	"github.com/iho/tripledger/internal/usecase"
	"github.com/iho/tripledger/tests/testutil"
)

type app struct {
	db         *testutil.TestDB
	outbox     *postgres.OutboxRepository
	trips      *usecase.TripUseCase
	expenses   *usecase.ExpenseUseCase
	payments   *usecase.PaymentUseCase
	dashboards *usecase.DashboardUseCase
	recon      *usecase.ReconciliationUseCase
}

func newApp(t *testing.T) *app {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)
	db.TruncateAll(context.Background())

	pool := db.Pool
	tripRepo := postgres.NewTripRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()
	engine := ledger.New()

	return &app{
		db:         db,
		outbox:     outboxRepo,
		trips:      usecase.NewTripUseCase(txManager, tripRepo, db.Users, outboxRepo, idGen),
		expenses:   usecase.NewExpenseUseCase(txManager, tripRepo, expenseRepo, outboxRepo, nil, idGen, postgres.NewRetrier()),
		payments:   usecase.NewPaymentUseCase(txManager, tripRepo, paymentRepo, outboxRepo, nil, idGen),
		dashboards: usecase.NewDashboardUseCase(tripRepo, expenseRepo, paymentRepo, engine, nil, 0, nil),
		recon:      usecase.NewReconciliationUseCase(tripRepo, expenseRepo, paymentRepo, txManager, outboxRepo, idGen, engine, nil),
	}
}

// newTrip creates a trip owned by the first user with the rest as members.
func (a *app) newTrip(t *testing.T, ctx context.Context, users ...*domain.User) *domain.Trip {
	t.Helper()

	trip, err := a.trips.CreateTrip(ctx, usecase.CreateTripInput{
		CreatorID: users[0].ID,
		Name:      "Lisbon",
		Currency:  "EUR",
	})
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	for _, u := range users[1:] {
		if _, err := a.trips.AddParticipant(ctx, usecase.AddParticipantInput{
			TripID:  trip.ID,
			ActorID: users[0].ID,
			UserID:  u.ID,
		}); err != nil {
			t.Fatalf("failed to add participant %s: %v", u.Name, err)
		}
	}

	return trip
}
