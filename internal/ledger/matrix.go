package ledger

import "github.com/iho/tripledger/internal/money"

// debtMatrix holds, for users i and j, what i owes j. Indexes follow the
// snapshot user order.
type debtMatrix [][]money.Amount

func buildMatrix(b *book) debtMatrix {
	n := len(b.users)
	m := make(debtMatrix, n)
	for i := range m {
		m[i] = make([]money.Amount, n)
	}

	for _, e := range b.expenses {
		for _, s := range e.shares {
			if s.user != e.payer {
				m[s.user][e.payer] += s.amount
			}
		}
	}

	// A payment from F to T reduces what F owes T.
	for _, p := range b.payments {
		m[p.from][p.to] -= p.amount
	}

	return m
}

// impliedBalance is what the group owes user i according to the matrix.
func (m debtMatrix) impliedBalance(i int) money.Amount {
	var bal money.Amount
	for j := range m {
		bal += m[j][i] - m[i][j]
	}
	return bal
}
