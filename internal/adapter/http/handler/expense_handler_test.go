package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/tripledger/internal/adapter/http/dto"
	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
)

type expenseServiceStub struct {
	addFn  func(ctx context.Context, input usecase.AddExpenseInput) (*domain.Expense, error)
	listFn func(ctx context.Context, tripID, userID string) ([]*domain.Expense, error)
}

func (s *expenseServiceStub) AddExpense(ctx context.Context, input usecase.AddExpenseInput) (*domain.Expense, error) {
	return s.addFn(ctx, input)
}

func (s *expenseServiceStub) ListExpenses(ctx context.Context, tripID, userID string) ([]*domain.Expense, error) {
	return s.listFn(ctx, tripID, userID)
}

func TestExpenseHandler_Create(t *testing.T) {
	var captured usecase.AddExpenseInput
	h := NewExpenseHandler(&expenseServiceStub{
		addFn: func(ctx context.Context, input usecase.AddExpenseInput) (*domain.Expense, error) {
			captured = input
			return &domain.Expense{
				ID:           "e1",
				TripID:       input.TripID,
				PaidByUserID: input.ActorID,
				Amount:       input.Amount,
				Shares: []domain.Share{
					{ExpenseID: "e1", UserID: "alice", Amount: decimal.NewFromInt(50)},
					{ExpenseID: "e1", UserID: "bob", Amount: decimal.NewFromInt(50)},
				},
			}, nil
		},
	})

	body := `{"description":"Dinner","amount":"100.00","participant_ids":["alice","bob"]}`
	rec := serve(t, http.MethodPost, "/trips/{tripID}/expenses", "/trips/t1/expenses", "alice", body, h.Create)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.TripID != "t1" || captured.ActorID != "alice" || len(captured.ParticipantIDs) != 2 {
		t.Fatalf("unexpected input %+v", captured)
	}

	resp := decode[dto.ExpenseResponse](t, rec)
	if len(resp.Shares) != 2 || !resp.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestExpenseHandler_Create_MapsErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("exact split: %w", domain.ErrAmountMismatch), http.StatusBadRequest},
		{domain.ErrNotParticipant, http.StatusForbidden},
		{domain.ErrTripNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		h := NewExpenseHandler(&expenseServiceStub{
			addFn: func(ctx context.Context, input usecase.AddExpenseInput) (*domain.Expense, error) {
				return nil, tt.err
			},
		})
		rec := serve(t, http.MethodPost, "/trips/{tripID}/expenses", "/trips/t1/expenses", "alice", `{"amount":"1"}`, h.Create)
		if rec.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, rec.Code)
		}
	}
}

func TestExpenseHandler_List(t *testing.T) {
	h := NewExpenseHandler(&expenseServiceStub{
		listFn: func(ctx context.Context, tripID, userID string) ([]*domain.Expense, error) {
			return []*domain.Expense{{ID: "e1"}, {ID: "e2"}}, nil
		},
	})

	rec := serve(t, http.MethodGet, "/trips/{tripID}/expenses", "/trips/t1/expenses", "bob", nil, h.List)
	if resp := decode[[]dto.ExpenseResponse](t, rec); len(resp) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(resp))
	}
}
