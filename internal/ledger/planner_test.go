package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iho/tripledger/internal/money"
)

func TestGreedyPlanner_Plan(t *testing.T) {
	tests := []struct {
		name     string
		balances []Balance
		want     []Transfer
	}{
		{
			name:     "nothing to settle",
			balances: []Balance{{UserID: "a", Amount: 0}, {UserID: "b", Amount: 1}, {UserID: "c", Amount: -1}},
			want:     []Transfer{},
		},
		{
			name: "largest debtor pays largest creditor first",
			balances: []Balance{
				{UserID: "a", Name: "Ana", Amount: -1000},
				{UserID: "b", Name: "Ben", Amount: -3000},
				{UserID: "c", Name: "Cy", Amount: 2500},
				{UserID: "d", Name: "Di", Amount: 1500},
			},
			want: []Transfer{
				{From: "b", To: "c", FromName: "Ben", ToName: "Cy", Amount: 2500},
				{From: "a", To: "d", FromName: "Ana", ToName: "Di", Amount: 1000},
				{From: "b", To: "d", FromName: "Ben", ToName: "Di", Amount: 500},
			},
		},
		{
			name: "ties keep input order",
			balances: []Balance{
				{UserID: "x", Amount: 500},
				{UserID: "y", Amount: 500},
				{UserID: "z", Amount: -1000},
			},
			want: []Transfer{
				{From: "z", To: "x", Amount: 500},
				{From: "z", To: "y", Amount: 500},
			},
		},
		{
			name: "one cent remainder is dropped",
			balances: []Balance{
				{UserID: "a", Amount: -1001},
				{UserID: "b", Amount: 1000},
				{UserID: "c", Amount: 1},
			},
			want: []Transfer{
				{From: "a", To: "b", Amount: 1000},
			},
		},
		{
			name: "one cent remainders are settled before dropping",
			balances: []Balance{
				{UserID: "a", Amount: -301},
				{UserID: "b", Amount: -301},
				{UserID: "c", Amount: -301},
				{UserID: "x", Amount: 300},
				{UserID: "y", Amount: 300},
				{UserID: "z", Amount: 303},
			},
			want: []Transfer{
				{From: "a", To: "z", Amount: 301},
				{From: "b", To: "x", Amount: 300},
				{From: "c", To: "y", Amount: 300},
				{From: "c", To: "z", Amount: 1},
				{From: "b", To: "z", Amount: 1},
			},
		},
		{
			name: "sub-epsilon debtors cover a larger creditor",
			balances: []Balance{
				{UserID: "a", Amount: -1},
				{UserID: "b", Amount: -1},
				{UserID: "c", Amount: -1},
				{UserID: "d", Amount: 3},
			},
			want: []Transfer{
				{From: "a", To: "d", Amount: 1},
				{From: "b", To: "d", Amount: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GreedyPlanner{}.Plan(tt.balances)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGreedyPlanner_ZeroesBalances(t *testing.T) {
	balances := []Balance{
		{UserID: "a", Amount: -4550},
		{UserID: "b", Amount: 1200},
		{UserID: "c", Amount: -700},
		{UserID: "d", Amount: 3000},
		{UserID: "e", Amount: 1050},
	}

	got := GreedyPlanner{}.Plan(balances)
	assert.LessOrEqual(t, len(got), len(balances)-1)

	remaining := map[string]money.Amount{}
	for _, b := range balances {
		remaining[b.UserID] = b.Amount
	}
	for _, tr := range got {
		assert.Positive(t, int64(tr.Amount))
		remaining[tr.From] += tr.Amount
		remaining[tr.To] -= tr.Amount
	}
	for id, amt := range remaining {
		assert.True(t, amt.IsNegligible(), "%s left with %s", id, amt)
	}
}

func TestGreedyPlanner_AppliedPlanLeavesAtMostEpsilon(t *testing.T) {
	tests := [][]Balance{
		{{UserID: "a", Amount: -301}, {UserID: "b", Amount: -301}, {UserID: "c", Amount: -301},
			{UserID: "x", Amount: 300}, {UserID: "y", Amount: 300}, {UserID: "z", Amount: 303}},
		{{UserID: "a", Amount: 501}, {UserID: "b", Amount: 501}, {UserID: "c", Amount: -1}, {UserID: "d", Amount: -1001}},
		{{UserID: "a", Amount: -1}, {UserID: "b", Amount: -1}, {UserID: "c", Amount: -1}, {UserID: "d", Amount: 3}},
	}

	for i, balances := range tests {
		remaining := map[string]money.Amount{}
		for _, b := range balances {
			remaining[b.UserID] = b.Amount
		}
		plan := GreedyPlanner{}.Plan(balances)
		for _, tr := range plan {
			remaining[tr.From] += tr.Amount
			remaining[tr.To] -= tr.Amount
		}
		for id, amt := range remaining {
			assert.True(t, amt.IsNegligible(), "case %d: %s left with %s", i, id, amt)
		}
	}
}
