package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/money"
	"github.com/iho/tripledger/internal/usecase"
	"github.com/iho/tripledger/internal/usecase/mocks"
)

func TestReconciliationUseCase_CheckTrip_Consistent(t *testing.T) {
	t.Parallel()

	uc := usecase.NewReconciliationUseCase(
		threePersonTrip(),
		&stubExpenseRepository{expenses: []*domain.Expense{dinnerExpense()}},
		&stubPaymentRepository{},
		nil, nil, nil, nil, nil,
	)

	report, err := uc.CheckTrip(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.Consistent {
		t.Fatalf("expected consistent trip, got error %q", report.Error)
	}
	if report.TotalResidual != 0 || report.BalanceSum != 0 {
		t.Errorf("expected zero residual and balance sum, got %s / %s", report.TotalResidual, report.BalanceSum)
	}
	if report.CheckedAt.IsZero() {
		t.Error("expected CheckedAt to be set")
	}
}

func TestReconciliationUseCase_CheckTrip_Discrepancy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	broken := &domain.Expense{
		ID:           "e2",
		PaidByUserID: "b",
		Amount:       decimal.NewFromInt(50),
		Shares:       []domain.Share{{ExpenseID: "e2", UserID: "a", Amount: decimal.NewFromInt(20)}},
	}

	txMgr := mocks.NewMockTransactionManager(ctrl)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	metrics := mocks.NewMockLedgerMetrics(ctrl)

	metrics.EXPECT().ObserveCompute(gomock.Any(), nil)
	expectTx(ctrl, txMgr, true)
	outbox.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, e *domain.Event) error {
			if e.Type != domain.EventTypeLedgerInconsistent {
				t.Errorf("unexpected event type %s", e.Type)
			}
			if e.TripID != "t1" {
				t.Errorf("unexpected trip %s", e.TripID)
			}
			return nil
		})

	uc := usecase.NewReconciliationUseCase(
		threePersonTrip(),
		&stubExpenseRepository{expenses: []*domain.Expense{dinnerExpense(), broken}},
		&stubPaymentRepository{},
		txMgr, outbox, sequentialIDs(ctrl), nil, metrics,
	)

	report, err := uc.CheckTrip(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Consistent {
		t.Fatal("expected inconsistent trip")
	}
	if len(report.ExpenseDiscrepancies) != 1 || report.ExpenseDiscrepancies[0].ExpenseID != "e2" {
		t.Fatalf("unexpected discrepancies: %+v", report.ExpenseDiscrepancies)
	}
	if report.TotalResidual != money.Amount(3000) {
		t.Errorf("expected residual 30.00, got %s", report.TotalResidual)
	}
	if report.Error == "" {
		t.Error("expected error description")
	}
}

func TestReconciliationUseCase_CheckTripAsMember(t *testing.T) {
	t.Parallel()

	uc := usecase.NewReconciliationUseCase(threePersonTrip(), &stubExpenseRepository{}, &stubPaymentRepository{}, nil, nil, nil, nil, nil)

	if _, err := uc.CheckTripAsMember(context.Background(), "t1", "zed"); !errors.Is(err, domain.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	report, err := uc.CheckTripAsMember(context.Background(), "t1", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Consistent {
		t.Errorf("expected empty trip to be consistent")
	}
}

func TestReconciliationUseCase_PropagatesLoadError(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("connection refused")
	uc := usecase.NewReconciliationUseCase(threePersonTrip(), &stubExpenseRepository{listErr: loadErr}, &stubPaymentRepository{}, nil, nil, nil, nil, nil)

	if _, err := uc.CheckTrip(context.Background(), "t1"); !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}
}
