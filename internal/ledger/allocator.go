package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/money"
)

var hundred = decimal.NewFromInt(100)

// percentTolerance is how far percentage splits may drift from 100.
var percentTolerance = decimal.RequireFromString("0.01")

// Allocation is one participant's share of an expense total.
type Allocation struct {
	UserID string       `json:"userId"`
	Amount money.Amount `json:"amount"`
}

// PercentageSplit assigns a percentage of the total to a participant.
type PercentageSplit struct {
	UserID  string          `json:"userId"`
	Percent decimal.Decimal `json:"percent"`
}

// SplitRequest carries the inputs for one of the split strategies.
type SplitRequest struct {
	ParticipantIDs []string
	Exact          []Allocation
	Percentages    []PercentageSplit
}

// MismatchError reports split amounts that do not add up to the expense total.
type MismatchError struct {
	ExpenseID  string
	Expected   money.Amount
	Actual     money.Amount
	Difference money.Amount
}

func newMismatchError(expenseID string, expected, actual money.Amount) *MismatchError {
	return &MismatchError{
		ExpenseID:  expenseID,
		Expected:   expected,
		Actual:     actual,
		Difference: actual - expected,
	}
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("%s: expected %s, got %s (difference %s)",
		domain.ErrAmountMismatch, e.Expected, e.Actual, e.Difference)
	if e.ExpenseID != "" {
		return "expense " + e.ExpenseID + ": " + msg
	}
	return msg
}

func (e *MismatchError) Unwrap() error {
	return domain.ErrAmountMismatch
}

// Allocate dispatches to the allocator for the given split type.
func Allocate(splitType domain.SplitType, total decimal.Decimal, req SplitRequest) ([]Allocation, error) {
	switch splitType {
	case domain.SplitTypeEqual:
		return AllocateEqual(total, req.ParticipantIDs)
	case domain.SplitTypeExact:
		return AllocateExact(total, req.Exact)
	case domain.SplitTypePercentage:
		return AllocatePercentage(total, req.Percentages)
	default:
		return nil, fmt.Errorf("%w: unknown split type %q", domain.ErrInvalidInput, splitType)
	}
}

// AllocateEqual splits total evenly. The first total mod n participants, in the
// order given, absorb one extra minor unit each.
func AllocateEqual(total decimal.Decimal, participantIDs []string) ([]Allocation, error) {
	if len(participantIDs) == 0 {
		return nil, fmt.Errorf("%w: equal split needs at least one participant", domain.ErrInvalidInput)
	}
	if err := checkUserIDs(participantIDs); err != nil {
		return nil, err
	}

	cents, err := totalToMinor(total)
	if err != nil {
		return nil, err
	}

	base, remainder := cents.Split(len(participantIDs))

	out := make([]Allocation, len(participantIDs))
	for i, id := range participantIDs {
		share := base
		if i < remainder {
			share++
		}
		out[i] = Allocation{UserID: id, Amount: share}
	}
	return out, nil
}

// AllocateExact accepts caller-provided amounts when they sum to total within
// money.Epsilon. The splits are returned unchanged.
func AllocateExact(total decimal.Decimal, splits []Allocation) ([]Allocation, error) {
	cents, err := totalToMinor(total)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(splits))
	var sum money.Amount
	for i, s := range splits {
		if s.Amount < 0 {
			return nil, fmt.Errorf("%w: negative share for user %s", domain.ErrInvalidInput, s.UserID)
		}
		ids[i] = s.UserID
		sum += s.Amount
	}
	if err := checkUserIDs(ids); err != nil {
		return nil, err
	}

	if (sum - cents).Abs() > money.Epsilon {
		return nil, newMismatchError("", cents, sum)
	}

	out := make([]Allocation, len(splits))
	copy(out, splits)
	return out, nil
}

// AllocatePercentage splits total by percentages that must sum to 100.
// Amounts are floored to minor units and the leftover units go to participants
// in the order given, so the result sums exactly to total.
func AllocatePercentage(total decimal.Decimal, splits []PercentageSplit) ([]Allocation, error) {
	if len(splits) == 0 {
		return nil, fmt.Errorf("%w: percentage split needs at least one participant", domain.ErrInvalidInput)
	}

	cents, err := totalToMinor(total)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(splits))
	sumPct := decimal.Zero
	for i, s := range splits {
		if s.Percent.IsNegative() {
			return nil, fmt.Errorf("%w: negative percentage for user %s", domain.ErrInvalidInput, s.UserID)
		}
		ids[i] = s.UserID
		sumPct = sumPct.Add(s.Percent)
	}
	if err := checkUserIDs(ids); err != nil {
		return nil, err
	}
	if sumPct.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return nil, fmt.Errorf("%w: percentages sum to %s, want 100", domain.ErrAmountMismatch, sumPct.String())
	}

	totalDec := decimal.NewFromInt(int64(cents))
	out := make([]Allocation, len(splits))
	var allocated money.Amount
	for i, s := range splits {
		share := money.Amount(totalDec.Mul(s.Percent).Div(hundred).Floor().IntPart())
		out[i] = Allocation{UserID: s.UserID, Amount: share}
		allocated += share
	}

	leftover := cents - allocated
	for i := 0; leftover != 0; i = (i + 1) % len(out) {
		switch {
		case leftover > 0:
			out[i].Amount++
			leftover--
		case out[i].Amount > 0:
			out[i].Amount--
			leftover++
		}
	}

	return out, nil
}

func totalToMinor(total decimal.Decimal) (money.Amount, error) {
	if total.IsNegative() {
		return 0, fmt.Errorf("%w: total %s is negative", domain.ErrInvalidInput, total.String())
	}
	return money.FromDecimal(total)
}

func checkUserIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty user id in split", domain.ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: user %s appears twice in split", domain.ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
