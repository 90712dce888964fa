package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitType selects how an expense total is divided between participants.
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypeExact      SplitType = "exact"
	SplitTypePercentage SplitType = "percentage"
)

// IsValid checks if the split type is supported.
func (s SplitType) IsValid() bool {
	switch s {
	case SplitTypeEqual, SplitTypeExact, SplitTypePercentage:
		return true
	}
	return false
}

// Expense is money one participant fronted on behalf of the group.
type Expense struct {
	CreatedAt    time.Time
	ID           string
	TripID       string
	Description  string
	Category     string
	PaidByUserID string
	Amount       decimal.Decimal
	Shares       []Share
}

// Validate checks the expense header. Shares are validated by the allocator.
func (e *Expense) Validate() error {
	if e.PaidByUserID == "" {
		return ErrInvalidInput
	}
	return ValidateAmount(e.Amount)
}

// Share is the portion of an expense attributed to one participant.
type Share struct {
	ExpenseID string
	UserID    string
	Amount    decimal.Decimal
}
