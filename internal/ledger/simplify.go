package ledger

import "github.com/iho/tripledger/internal/money"

// NetDebt is the single directed amount left between two users after
// offsetting what they owe each other.
type NetDebt struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	FromName string       `json:"fromName"`
	ToName   string       `json:"toName"`
	Amount   money.Amount `json:"amount"`
}

// simplify collapses each pair of users into at most one NetDebt. Pairs are
// visited once, when the first id sorts before the second.
func simplify(b *book, m debtMatrix) []NetDebt {
	out := []NetDebt{}
	for i, a := range b.users {
		for j, c := range b.users {
			if a.ID >= c.ID {
				continue
			}

			net := m[i][j] - m[j][i]
			switch {
			case net > money.Epsilon:
				out = append(out, NetDebt{
					From: a.ID, To: c.ID,
					FromName: a.DisplayName(), ToName: c.DisplayName(),
					Amount: net,
				})
			case net < -money.Epsilon:
				out = append(out, NetDebt{
					From: c.ID, To: a.ID,
					FromName: c.DisplayName(), ToName: a.DisplayName(),
					Amount: -net,
				})
			}
		}
	}
	return out
}
