package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentMethod is stored when the caller does not name one.
const DefaultPaymentMethod = "Other"

// Payment is a direct transfer that reduces what From owes To.
type Payment struct {
	CreatedAt  time.Time
	ID         string
	TripID     string
	FromUserID string
	ToUserID   string
	Method     string
	Note       string
	Amount     decimal.Decimal
}

// Validate validates a payment record.
func (p *Payment) Validate() error {
	if p.FromUserID == p.ToUserID {
		return ErrSameUser
	}

	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}
