package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/ledger"
	"github.com/iho/tripledger/internal/money"
	"github.com/iho/tripledger/internal/usecase"
	"github.com/iho/tripledger/internal/usecase/mocks"
)

func dinnerExpense() *domain.Expense {
	return &domain.Expense{
		ID:           "e1",
		TripID:       "t1",
		PaidByUserID: "a",
		Amount:       decimal.NewFromInt(90),
		Shares: []domain.Share{
			{ExpenseID: "e1", UserID: "a", Amount: decimal.NewFromInt(30)},
			{ExpenseID: "e1", UserID: "b", Amount: decimal.NewFromInt(30)},
			{ExpenseID: "e1", UserID: "c", Amount: decimal.NewFromInt(30)},
		},
	}
}

func TestDashboardUseCase_GetDashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	metrics := mocks.NewMockLedgerMetrics(ctrl)
	metrics.EXPECT().ObserveCompute(gomock.Any(), nil)

	expenses := &stubExpenseRepository{expenses: []*domain.Expense{dinnerExpense()}}
	payments := &stubPaymentRepository{payments: []*domain.Payment{
		{ID: "p1", TripID: "t1", FromUserID: "b", ToUserID: "a", Amount: decimal.NewFromInt(30)},
	}}

	uc := usecase.NewDashboardUseCase(threePersonTrip(), expenses, payments, ledger.New(), nil, 0, metrics)

	dash, err := uc.GetDashboard(context.Background(), "t1", "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dash.Participants) != 3 || len(dash.Expenses) != 1 || len(dash.Payments) != 1 {
		t.Fatalf("expected full snapshot, got %d/%d/%d", len(dash.Participants), len(dash.Expenses), len(dash.Payments))
	}

	if got := dash.Report.NetBalances["a"]; got != money.Amount(3000) {
		t.Errorf("expected a to be owed 30.00, got %s", got)
	}
	if got := dash.Report.NetBalances["b"]; got != 0 {
		t.Errorf("expected b to be settled, got %s", got)
	}

	if dash.UserView.UserID != "c" {
		t.Errorf("expected view for c, got %s", dash.UserView.UserID)
	}
	if dash.UserView.YouOwe.Total != money.Amount(3000) {
		t.Errorf("expected c to owe 30.00, got %s", dash.UserView.YouOwe.Total)
	}
	if len(dash.Report.SettlementPlan) != 1 || dash.Report.SettlementPlan[0].From != "c" {
		t.Errorf("unexpected plan: %+v", dash.Report.SettlementPlan)
	}
}

func TestDashboardUseCase_EmptyTrip(t *testing.T) {
	uc := usecase.NewDashboardUseCase(threePersonTrip(), &stubExpenseRepository{}, &stubPaymentRepository{}, nil, nil, 0, nil)

	dash, err := uc.GetDashboard(context.Background(), "t1", "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dash.Report.NetDebts) != 0 || len(dash.Report.SettlementPlan) != 0 {
		t.Errorf("expected empty report, got %+v", dash.Report)
	}
}

func TestDashboardUseCase_UsesCache(t *testing.T) {
	cache := newMemoryCache()
	expenses := &stubExpenseRepository{expenses: []*domain.Expense{dinnerExpense()}}
	uc := usecase.NewDashboardUseCase(threePersonTrip(), expenses, &stubPaymentRepository{}, nil, cache, time.Minute, nil)

	first, err := uc.GetDashboard(context.Background(), "t1", "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected dashboard to be cached, got %d sets", cache.sets)
	}

	// A cache hit must not touch the expense repository.
	expenses.listErr = errors.New("should not be called")

	second, err := uc.GetDashboard(context.Background(), "t1", "b")
	if err != nil {
		t.Fatalf("unexpected error on cache hit: %v", err)
	}
	if second.Report.NetBalances["a"] != first.Report.NetBalances["a"] {
		t.Errorf("cached report differs: %s vs %s", second.Report.NetBalances["a"], first.Report.NetBalances["a"])
	}
	if second.UserView.UserID != "b" || second.UserView.YouOwe.Total != money.Amount(3000) {
		t.Errorf("unexpected view from cache: %+v", second.UserView)
	}
	if !second.Expenses[0].Amount.Equal(decimal.NewFromInt(90)) {
		t.Errorf("expected cached expense amount 90, got %s", second.Expenses[0].Amount)
	}

	if _, err := cache.Incr(context.Background(), usecase.DashboardVersionKey("t1")); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.GetDashboard(context.Background(), "t1", "a"); err == nil {
		t.Fatal("expected repository error after invalidation")
	}
}

func taxiExpense() *domain.Expense {
	return &domain.Expense{
		ID:           "e2",
		TripID:       "t1",
		PaidByUserID: "b",
		Amount:       decimal.NewFromInt(60),
		Shares: []domain.Share{
			{ExpenseID: "e2", UserID: "a", Amount: decimal.NewFromInt(30)},
			{ExpenseID: "e2", UserID: "b", Amount: decimal.NewFromInt(30)},
		},
	}
}

func TestDashboardUseCase_WriteBeforeStoreIsNotServedStale(t *testing.T) {
	ctx := context.Background()
	cache := &interleavingCache{memoryCache: newMemoryCache()}
	expenses := &stubExpenseRepository{expenses: []*domain.Expense{dinnerExpense()}}
	uc := usecase.NewDashboardUseCase(threePersonTrip(), expenses, &stubPaymentRepository{}, nil, cache, time.Minute, nil)

	// A write commits and invalidates after the snapshot was loaded but
	// before the computed dashboard reaches the cache.
	cache.beforeSet = func() {
		expenses.expenses = append(expenses.expenses, taxiExpense())
		if _, err := cache.Incr(ctx, usecase.DashboardVersionKey("t1")); err != nil {
			t.Fatal(err)
		}
	}

	first, err := uc.GetDashboard(ctx, "t1", "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := first.Report.NetBalances["a"]; got != money.Amount(6000) {
		t.Fatalf("expected first read to see the dinner only, got %s", got)
	}

	second, err := uc.GetDashboard(ctx, "t1", "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := second.Report.NetBalances["a"]; got != money.Amount(3000) {
		t.Errorf("expected second read to include the taxi, got %s", got)
	}
	if len(second.Expenses) != 2 {
		t.Errorf("expected 2 expenses after the write, got %d", len(second.Expenses))
	}
}

func TestDashboardUseCase_WriteDuringLoadSkipsStore(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	expenses := &stubExpenseRepository{expenses: []*domain.Expense{dinnerExpense()}}
	uc := usecase.NewDashboardUseCase(threePersonTrip(), expenses, &stubPaymentRepository{}, nil, cache, time.Minute, nil)

	expenses.onList = func() {
		expenses.onList = nil
		if _, err := cache.Incr(ctx, usecase.DashboardVersionKey("t1")); err != nil {
			t.Error(err)
		}
	}

	if _, err := uc.GetDashboard(ctx, "t1", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.sets != 0 {
		t.Fatalf("expected dashboard loaded across a write not to be cached, got %d sets", cache.sets)
	}

	if _, err := uc.GetDashboard(ctx, "t1", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected settled dashboard to be cached, got %d sets", cache.sets)
	}
	if data, _ := cache.Get(ctx, usecase.DashboardCacheKey("t1", 1)); data == nil {
		t.Error("expected dashboard cached under version 1")
	}
}

func TestDashboardUseCase_MismatchedShares(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	broken := dinnerExpense()
	broken.Shares = broken.Shares[:2]

	metrics := mocks.NewMockLedgerMetrics(ctrl)
	metrics.EXPECT().ObserveCompute(gomock.Any(), gomock.Not(nil))

	uc := usecase.NewDashboardUseCase(threePersonTrip(), &stubExpenseRepository{expenses: []*domain.Expense{broken}}, &stubPaymentRepository{}, nil, nil, 0, metrics)

	_, err := uc.GetDashboard(context.Background(), "t1", "a")
	if !errors.Is(err, domain.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}
	if !errors.Is(err, domain.ErrCorruptLedger) {
		t.Fatalf("expected stored mismatch to be reported as ErrCorruptLedger, got %v", err)
	}
}

func TestDashboardUseCase_RequiresMembership(t *testing.T) {
	uc := usecase.NewDashboardUseCase(threePersonTrip(), &stubExpenseRepository{}, &stubPaymentRepository{}, nil, nil, 0, nil)

	if _, err := uc.GetDashboard(context.Background(), "t1", "zed"); !errors.Is(err, domain.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if _, err := uc.GetDashboard(context.Background(), "nope", "a"); !errors.Is(err, domain.ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound, got %v", err)
	}
}
