// Package ledger turns a trip's expenses, shares and payments into pairwise net
// debts, per-user summaries and a settlement plan. It is pure: no I/O and no
// state between calls, so one Engine may be shared by concurrent callers.
package ledger

import (
	"errors"
	"fmt"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/money"
)

// Report is everything the engine derives from one snapshot.
type Report struct {
	SpendingSummary []Spending              `json:"spendingSummary"`
	NetBalances     map[string]money.Amount `json:"netBalances"`
	Balances        []Balance               `json:"balances"`
	NetDebts        []NetDebt               `json:"netDebts"`
	SettlementPlan  []Transfer              `json:"settlementPlan"`
	TotalResidual   money.Amount            `json:"totalResidual"`
}

// Reconciliation is the outcome of checking a snapshot without failing on
// the first problem.
type Reconciliation struct {
	Consistent    bool
	Discrepancies []Discrepancy
	TotalResidual money.Amount
	BalanceSum    money.Amount
	Violation     error
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlanner replaces the default GreedyPlanner.
func WithPlanner(p SettlementPlanner) Option {
	return func(e *Engine) {
		e.planner = p
	}
}

// Engine computes reports. The zero value is not usable; use New.
type Engine struct {
	planner SettlementPlanner
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{planner: GreedyPlanner{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Compute runs the default engine.
func Compute(s Snapshot) (*Report, error) {
	return defaultEngine.Compute(s)
}

// Compute derives the report for s. It fails with domain.ErrInvalidInput for
// malformed records, a *MismatchError for an expense whose shares do not add
// up, and domain.ErrUnbalancedLedger if the internal cross-check fails.
func (e *Engine) Compute(s Snapshot) (*Report, error) {
	b, err := newBook(s)
	if err != nil {
		return nil, err
	}

	if d := b.discrepancies(); len(d) > 0 {
		return nil, newMismatchError(d[0].ExpenseID, d[0].Expected, d[0].Actual)
	}

	m := buildMatrix(b)
	balances := netBalances(b)
	residual, err := verify(b, m, balances)
	if err != nil {
		return nil, err
	}

	report := &Report{
		SpendingSummary: spendingSummary(b),
		NetBalances:     make(map[string]money.Amount, len(balances)),
		Balances:        balances,
		NetDebts:        simplify(b, m),
		SettlementPlan:  e.planner.Plan(balances),
		TotalResidual:   residual,
	}
	if report.SettlementPlan == nil {
		report.SettlementPlan = []Transfer{}
	}
	for _, bal := range balances {
		report.NetBalances[bal.UserID] = bal.Amount
	}

	return report, nil
}

// Reconcile checks s and reports every share discrepancy along with any
// invariant violation. Only malformed records produce an error.
func (e *Engine) Reconcile(s Snapshot) (*Reconciliation, error) {
	b, err := newBook(s)
	if err != nil {
		return nil, err
	}

	rec := &Reconciliation{Discrepancies: b.discrepancies()}
	if rec.Discrepancies == nil {
		rec.Discrepancies = []Discrepancy{}
	}

	balances := netBalances(b)
	for _, bal := range balances {
		rec.BalanceSum += bal.Amount
	}
	rec.TotalResidual, rec.Violation = verify(b, buildMatrix(b), balances)
	if rec.Violation == nil && len(rec.Discrepancies) > 0 {
		d := rec.Discrepancies[0]
		rec.Violation = newMismatchError(d.ExpenseID, d.Expected, d.Actual)
	}
	rec.Consistent = rec.Violation == nil

	return rec, nil
}

// verify cross-checks the aggregator against the matrix. Each user's balance
// must equal the matrix-implied balance plus the rounding residual of the
// expenses they paid, and all balances must add up to the total residual.
func verify(b *book, m debtMatrix, balances []Balance) (money.Amount, error) {
	residuals := make([]money.Amount, len(b.users))
	var total money.Amount
	for i := range b.expenses {
		r := b.expenses[i].residual()
		residuals[b.expenses[i].payer] += r
		total += r
	}

	var sum money.Amount
	for i, bal := range balances {
		sum += bal.Amount
		if want := m.impliedBalance(i) + residuals[i]; bal.Amount != want {
			return total, fmt.Errorf("%w: user %s has balance %s, debts imply %s",
				domain.ErrUnbalancedLedger, bal.UserID, bal.Amount, want)
		}
	}
	if sum != total {
		return total, fmt.Errorf("%w: balances sum to %s, residual is %s",
			domain.ErrUnbalancedLedger, sum, total)
	}

	return total, nil
}

// IsInvariantViolation reports whether err signals an engine bug rather than
// bad input.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, domain.ErrUnbalancedLedger)
}
