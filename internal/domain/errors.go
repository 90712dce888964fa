package domain

import "errors"

var (
	// Ledger errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrAmountMismatch   = errors.New("split amounts do not match the expense total")
	ErrUnbalancedLedger = errors.New("ledger invariant violated: net balances do not sum to zero")
	ErrCorruptLedger    = errors.New("stored ledger records are inconsistent")

	// Trip errors
	ErrTripNotFound       = errors.New("trip not found")
	ErrNotParticipant     = errors.New("user is not a participant of this trip")
	ErrAlreadyParticipant = errors.New("user is already a participant of this trip")
	ErrForbidden          = errors.New("operation not permitted")

	// Payment errors
	ErrSameUser      = errors.New("cannot make a payment to yourself")
	ErrInvalidAmount = errors.New("amount must be positive")
)
