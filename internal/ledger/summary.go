package ledger

import (
	"sort"

	"github.com/iho/tripledger/internal/money"
)

// Spending is how much of the group's spending is attributable to a user,
// regardless of who fronted the money.
type Spending struct {
	UserID        string       `json:"userId"`
	Name          string       `json:"name"`
	TotalSpending money.Amount `json:"totalSpending"`
}

// Balance is a user's overall position. Positive means the group owes them.
type Balance struct {
	UserID string       `json:"userId"`
	Name   string       `json:"name"`
	Amount money.Amount `json:"amount"`
}

// spendingSummary sums owned shares per user, largest first.
func spendingSummary(b *book) []Spending {
	totals := make([]money.Amount, len(b.users))
	for _, e := range b.expenses {
		for _, s := range e.shares {
			totals[s.user] += s.amount
		}
	}

	out := make([]Spending, len(b.users))
	for i, u := range b.users {
		out[i] = Spending{UserID: u.ID, Name: u.DisplayName(), TotalSpending: totals[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSpending > out[j].TotalSpending
	})
	return out
}

// netBalances returns paid - owed + sent - received per user, in user order.
func netBalances(b *book) []Balance {
	totals := make([]money.Amount, len(b.users))
	for _, e := range b.expenses {
		totals[e.payer] += e.amount
		for _, s := range e.shares {
			totals[s.user] -= s.amount
		}
	}
	for _, p := range b.payments {
		totals[p.from] += p.amount
		totals[p.to] -= p.amount
	}

	out := make([]Balance, len(b.users))
	for i, u := range b.users {
		out[i] = Balance{UserID: u.ID, Name: u.DisplayName(), Amount: totals[i]}
	}
	return out
}
