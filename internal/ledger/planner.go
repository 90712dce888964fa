package ledger

import (
	"sort"

	"github.com/iho/tripledger/internal/money"
)

// Transfer is a suggested payment that moves the group towards zero balances.
type Transfer struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	FromName string       `json:"fromName"`
	ToName   string       `json:"toName"`
	Amount   money.Amount `json:"amount"`
}

// SettlementPlanner turns net balances into transfers that zero every balance.
type SettlementPlanner interface {
	Plan(balances []Balance) []Transfer
}

// GreedyPlanner matches the largest debtor with the largest creditor until
// one side runs out. It is deterministic but not guaranteed to produce the
// fewest transfers.
type GreedyPlanner struct{}

type position struct {
	userID string
	name   string
	amount money.Amount
}

// Plan implements SettlementPlanner. Balances within money.Epsilon are
// left alone unless a larger position needs them to get within epsilon.
func (GreedyPlanner) Plan(balances []Balance) []Transfer {
	var debtors, creditors, smallDebtors, smallCreditors []position
	for _, b := range balances {
		switch {
		case b.Amount < -money.Epsilon:
			debtors = append(debtors, position{userID: b.UserID, name: b.Name, amount: -b.Amount})
		case b.Amount > money.Epsilon:
			creditors = append(creditors, position{userID: b.UserID, name: b.Name, amount: b.Amount})
		case b.Amount < 0:
			smallDebtors = append(smallDebtors, position{userID: b.UserID, name: b.Name, amount: -b.Amount})
		case b.Amount > 0:
			smallCreditors = append(smallCreditors, position{userID: b.UserID, name: b.Name, amount: b.Amount})
		}
	}

	transfers := []Transfer{}
	for len(debtors) > 0 && len(creditors) > 0 {
		sortPositions(debtors)
		sortPositions(creditors)

		d, c := &debtors[0], &creditors[0]
		amount := money.Min(d.amount, c.amount)
		transfers = append(transfers, transfer(d, c, amount))

		d.amount -= amount
		c.amount -= amount
		if d.amount == 0 {
			debtors = debtors[1:]
		}
		if c.amount == 0 {
			creditors = creditors[1:]
		}
	}

	// Whatever one side still holds is owed by, or to, balances that were
	// too small to enter the matching.
	for i := range creditors {
		c := &creditors[i]
		for c.amount > money.Epsilon && len(smallDebtors) > 0 {
			d := &smallDebtors[0]
			amount := money.Min(d.amount, c.amount)
			transfers = append(transfers, transfer(d, c, amount))
			c.amount -= amount
			smallDebtors = smallDebtors[1:]
		}
	}
	for i := range debtors {
		d := &debtors[i]
		for d.amount > money.Epsilon && len(smallCreditors) > 0 {
			c := &smallCreditors[0]
			amount := money.Min(d.amount, c.amount)
			transfers = append(transfers, transfer(d, c, amount))
			d.amount -= amount
			smallCreditors = smallCreditors[1:]
		}
	}

	return transfers
}

func transfer(from, to *position, amount money.Amount) Transfer {
	return Transfer{From: from.userID, To: to.userID, FromName: from.name, ToName: to.name, Amount: amount}
}

func sortPositions(p []position) {
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].amount > p[j].amount
	})
}
