// Package money holds currency amounts as integer minor units so that splitting
// and accumulating many records never drifts. Decimal values only appear at the
// edges: when records come in and when results are rendered.
package money

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/tripledger/internal/domain"
)

// Places is the number of decimal places of the minor unit.
const Places = 2

// Epsilon is the tolerance (0.01 major units) under which a balance counts as settled.
const Epsilon Amount = 1

// Amount is a signed currency amount in minor units.
type Amount int64

// FromDecimal converts a decimal to minor units, rounding half away from zero.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	scaled := d.Shift(Places).Round(0).BigInt()
	if !scaled.IsInt64() {
		return 0, fmt.Errorf("%w: amount %s is out of range", domain.ErrInvalidInput, d.String())
	}
	return Amount(scaled.Int64()), nil
}

// groupedNumber matches a number whose integer part uses comma thousands
// separators.
var groupedNumber = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// Parse converts a display string such as "1,250.50" to minor units. Commas
// are only accepted as thousands separators.
func Parse(s string) (Amount, error) {
	cleaned := strings.TrimSpace(s)
	if strings.Contains(cleaned, ",") {
		if !groupedNumber.MatchString(cleaned) {
			return 0, fmt.Errorf("%w: %q has misplaced thousands separators", domain.ErrInvalidInput, s)
		}
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, s)
	}
	return FromDecimal(d)
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Places)
}

// String renders the amount with exactly two decimals.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Places)
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// IsNegligible reports whether the amount is within Epsilon of zero.
func (a Amount) IsNegligible() bool {
	return a.Abs() <= Epsilon
}

// Split divides a non-negative amount into n parts: every part gets base and
// the first remainder parts get one extra minor unit.
func (a Amount) Split(n int) (base Amount, remainder int) {
	return a / Amount(n), int(a % Amount(n))
}

// Min returns the smaller of two amounts.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// MarshalJSON encodes the amount as a decimal string, e.g. "33.34".
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON accepts both "33.34" and 33.34.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}

	parsed, err := Parse(raw)
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}
