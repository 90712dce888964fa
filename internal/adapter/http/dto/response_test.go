package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/ledger"
	"github.com/iho/tripledger/internal/money"
	"github.com/iho/tripledger/internal/usecase"
)

func TestExpenseFromDomain(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e := &domain.Expense{
		ID:           "e1",
		TripID:       "t1",
		PaidByUserID: "a",
		Description:  "Dinner",
		Amount:       decimal.NewFromInt(90),
		CreatedAt:    now,
		Shares: []domain.Share{
			{ExpenseID: "e1", UserID: "a", Amount: decimal.NewFromInt(45)},
			{ExpenseID: "e1", UserID: "b", Amount: decimal.NewFromInt(45)},
		},
	}

	resp := ExpenseFromDomain(e)
	if resp.ID != "e1" || resp.PaidByUserID != "a" || !resp.CreatedAt.Equal(now) {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Shares) != 2 || resp.Shares[1].UserID != "b" {
		t.Fatalf("unexpected shares: %+v", resp.Shares)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"paid_by_user_id":"a"`) || !strings.Contains(string(out), `"amount":"90"`) {
		t.Errorf("unexpected json: %s", out)
	}
}

func TestExpenseFromDomain_NoShares(t *testing.T) {
	out, err := json.Marshal(ExpenseFromDomain(&domain.Expense{ID: "e1"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"shares":[]`) {
		t.Errorf("expected empty shares array, got %s", out)
	}
}

func TestParticipantFromDomain(t *testing.T) {
	p := &domain.Participant{TripID: "t1", User: domain.User{ID: "u1", Username: "ana"}, Role: domain.RoleAdmin}

	resp := ParticipantFromDomain(p)
	if resp.UserID != "u1" || resp.Name != "ana" || resp.Role != "admin" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestPaymentsFromDomain(t *testing.T) {
	got := PaymentsFromDomain([]*domain.Payment{
		{ID: "p1", FromUserID: "b", ToUserID: "a", Amount: decimal.NewFromInt(5), Method: "Cash"},
	})
	if len(got) != 1 || got[0].FromUserID != "b" || got[0].Method != "Cash" {
		t.Errorf("unexpected payments: %+v", got)
	}
}

func TestDashboardFromUseCase(t *testing.T) {
	report := &ledger.Report{
		NetBalances: map[string]money.Amount{"a": 3000, "c": -3000},
		NetDebts:    []ledger.NetDebt{{From: "c", To: "a", Amount: 3000}},
	}
	d := &usecase.Dashboard{
		TripLedger: usecase.TripLedger{
			Trip:   &domain.Trip{ID: "t1", Name: "Lisbon", Currency: "EUR"},
			Report: report,
		},
		UserView: report.PerUser("c"),
	}

	resp := DashboardFromUseCase(d)
	if resp.Trip.ID != "t1" {
		t.Errorf("unexpected trip: %+v", resp.Trip)
	}
	if resp.YouOwe.Total != 3000 || len(resp.YouOwe.Breakdown) != 1 {
		t.Errorf("unexpected you_owe: %+v", resp.YouOwe)
	}
	if resp.YouAreOwed.Total != 0 {
		t.Errorf("unexpected you_are_owed: %+v", resp.YouAreOwed)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"you_owe":{"total":"30.00"`) {
		t.Errorf("unexpected json: %s", out)
	}
}

func TestConsistencyFromUseCase(t *testing.T) {
	resp := ConsistencyFromUseCase(&usecase.ConsistencyReport{TripID: "t1", Consistent: true})
	if resp.ExpenseDiscrepancies == nil {
		t.Fatal("expected empty discrepancy list, got nil")
	}

	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"total_residual":"0.00"`) {
		t.Errorf("unexpected json: %s", out)
	}
	if strings.Contains(string(out), `"error"`) {
		t.Errorf("expected error to be omitted: %s", out)
	}
}
