package ledger

import "github.com/iho/tripledger/internal/money"

// Obligation is one line of what a user owes.
type Obligation struct {
	To     string       `json:"to"`
	ToName string       `json:"toName"`
	Amount money.Amount `json:"amount"`
}

// Obligations is everything a user owes, with the total.
type Obligations struct {
	Total     money.Amount `json:"total"`
	Breakdown []Obligation `json:"breakdown"`
}

// Receivable is one line of what a user is owed.
type Receivable struct {
	From     string       `json:"from"`
	FromName string       `json:"fromName"`
	Amount   money.Amount `json:"amount"`
}

// Receivables is everything a user is owed, with the total.
type Receivables struct {
	Total     money.Amount `json:"total"`
	Breakdown []Receivable `json:"breakdown"`
}

// UserView is the ledger as seen by one user.
type UserView struct {
	UserID     string      `json:"userId"`
	YouOwe     Obligations `json:"youOwe"`
	YouAreOwed Receivables `json:"youAreOwed"`
}

// YouOwe lists the net debts where userID is the debtor.
func (r *Report) YouOwe(userID string) Obligations {
	out := Obligations{Breakdown: []Obligation{}}
	for _, d := range r.NetDebts {
		if d.From != userID {
			continue
		}
		out.Total += d.Amount
		out.Breakdown = append(out.Breakdown, Obligation{To: d.To, ToName: d.ToName, Amount: d.Amount})
	}
	return out
}

// YouAreOwed lists the net debts where userID is the creditor.
func (r *Report) YouAreOwed(userID string) Receivables {
	out := Receivables{Breakdown: []Receivable{}}
	for _, d := range r.NetDebts {
		if d.To != userID {
			continue
		}
		out.Total += d.Amount
		out.Breakdown = append(out.Breakdown, Receivable{From: d.From, FromName: d.FromName, Amount: d.Amount})
	}
	return out
}

// PerUser combines YouOwe and YouAreOwed for one user.
func (r *Report) PerUser(userID string) UserView {
	return UserView{
		UserID:     userID,
		YouOwe:     r.YouOwe(userID),
		YouAreOwed: r.YouAreOwed(userID),
	}
}

// GroupSettlements returns a copy of the settlement plan.
func (r *Report) GroupSettlements() []Transfer {
	out := make([]Transfer, len(r.SettlementPlan))
	copy(out, r.SettlementPlan)
	return out
}
