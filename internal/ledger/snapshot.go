package ledger

import (
	"fmt"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/money"
)

// Snapshot is the full record set of one trip, fetched together by the caller.
// Users are kept in the order given; that order drives every tie-break.
type Snapshot struct {
	Users    []domain.User
	Expenses []domain.Expense
	Shares   []domain.Share
	Payments []domain.Payment
}

// NewSnapshot builds a snapshot from expenses that carry their shares inline.
func NewSnapshot(users []domain.User, expenses []domain.Expense, payments []domain.Payment) Snapshot {
	s := Snapshot{
		Users:    users,
		Expenses: expenses,
		Payments: payments,
	}
	for _, e := range expenses {
		for _, sh := range e.Shares {
			if sh.ExpenseID == "" {
				sh.ExpenseID = e.ID
			}
			s.Shares = append(s.Shares, sh)
		}
	}
	return s
}

type bookShare struct {
	user   int
	amount money.Amount
}

type bookExpense struct {
	id     string
	payer  int
	amount money.Amount
	shares []bookShare
}

type bookPayment struct {
	from   int
	to     int
	amount money.Amount
}

// book is a snapshot converted to user indexes and minor units.
type book struct {
	users    []domain.User
	index    map[string]int
	expenses []bookExpense
	payments []bookPayment
}

func newBook(s Snapshot) (*book, error) {
	b := &book{
		users: s.Users,
		index: make(map[string]int, len(s.Users)),
	}

	for i, u := range s.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("%w: user without id", domain.ErrInvalidInput)
		}
		if _, dup := b.index[u.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate user %s", domain.ErrInvalidInput, u.ID)
		}
		b.index[u.ID] = i
	}

	expenseIndex := make(map[string]int, len(s.Expenses))
	for _, e := range s.Expenses {
		if _, dup := expenseIndex[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate expense %s", domain.ErrInvalidInput, e.ID)
		}
		payer, err := b.lookup(e.PaidByUserID, "expense "+e.ID+" payer")
		if err != nil {
			return nil, err
		}
		if !e.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: expense %s amount must be positive", domain.ErrInvalidInput, e.ID)
		}
		amount, err := money.FromDecimal(e.Amount)
		if err != nil {
			return nil, err
		}
		expenseIndex[e.ID] = len(b.expenses)
		b.expenses = append(b.expenses, bookExpense{id: e.ID, payer: payer, amount: amount})
	}

	for _, sh := range s.Shares {
		ei, ok := expenseIndex[sh.ExpenseID]
		if !ok {
			return nil, fmt.Errorf("%w: share references unknown expense %s", domain.ErrInvalidInput, sh.ExpenseID)
		}
		user, err := b.lookup(sh.UserID, "share of expense "+sh.ExpenseID)
		if err != nil {
			return nil, err
		}
		if sh.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: negative share of expense %s", domain.ErrInvalidInput, sh.ExpenseID)
		}
		amount, err := money.FromDecimal(sh.Amount)
		if err != nil {
			return nil, err
		}
		b.expenses[ei].shares = append(b.expenses[ei].shares, bookShare{user: user, amount: amount})
	}

	for _, p := range s.Payments {
		from, err := b.lookup(p.FromUserID, "payment "+p.ID+" sender")
		if err != nil {
			return nil, err
		}
		to, err := b.lookup(p.ToUserID, "payment "+p.ID+" recipient")
		if err != nil {
			return nil, err
		}
		if from == to {
			return nil, fmt.Errorf("%w: payment %s: %v", domain.ErrInvalidInput, p.ID, domain.ErrSameUser)
		}
		if !p.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: payment %s amount must be positive", domain.ErrInvalidInput, p.ID)
		}
		amount, err := money.FromDecimal(p.Amount)
		if err != nil {
			return nil, err
		}
		b.payments = append(b.payments, bookPayment{from: from, to: to, amount: amount})
	}

	return b, nil
}

func (b *book) lookup(userID, what string) (int, error) {
	i, ok := b.index[userID]
	if !ok {
		return 0, fmt.Errorf("%w: %s references unknown user %q", domain.ErrInvalidInput, what, userID)
	}
	return i, nil
}

// residual is what the payer fronted beyond the recorded shares. It is
// non-zero only through rounding within the per-share tolerance.
func (e *bookExpense) residual() money.Amount {
	var sum money.Amount
	for _, s := range e.shares {
		sum += s.amount
	}
	return e.amount - sum
}

// Discrepancy is an expense whose shares do not add up to its amount.
type Discrepancy struct {
	ExpenseID  string       `json:"expenseId"`
	Expected   money.Amount `json:"expected"`
	Actual     money.Amount `json:"actual"`
	Difference money.Amount `json:"difference"`
}

// discrepancies lists expenses whose shares are off by more than one minor
// unit per share. An expense with no shares is always a discrepancy.
func (b *book) discrepancies() []Discrepancy {
	var out []Discrepancy
	for i := range b.expenses {
		e := &b.expenses[i]
		res := e.residual()
		if len(e.shares) > 0 && res.Abs() <= money.Amount(len(e.shares)) {
			continue
		}
		out = append(out, Discrepancy{
			ExpenseID:  e.id,
			Expected:   e.amount,
			Actual:     e.amount - res,
			Difference: -res,
		})
	}
	return out
}
