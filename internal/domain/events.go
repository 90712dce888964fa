package domain

import "time"

// Event types
const (
	EventTypeExpenseCreated     = "expense.created"
	EventTypePaymentRecorded    = "payment.recorded"
	EventTypeParticipantAdded   = "participant.added"
	EventTypeLedgerInconsistent = "ledger.inconsistent"
)

// Event is a notification about a change to a trip's ledger.
type Event struct {
	ID         string         `json:"id"`
	TripID     string         `json:"trip_id"`
	Type       string         `json:"type"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`

	// PublishedAt is nil until the outbox worker has delivered the event.
	PublishedAt *time.Time `json:"-"`
}

// ParticipantAddedPayload builds the payload for EventTypeParticipantAdded.
func ParticipantAddedPayload(p *Participant) map[string]any {
	return map[string]any{
		"user_id": p.User.ID,
		"role":    string(p.Role),
	}
}

// ExpenseCreatedPayload builds the payload for EventTypeExpenseCreated.
func ExpenseCreatedPayload(e *Expense) map[string]any {
	return map[string]any{
		"expense_id": e.ID,
		"paid_by":    e.PaidByUserID,
		"amount":     e.Amount.StringFixed(2),
		"shares":     len(e.Shares),
	}
}

// PaymentRecordedPayload builds the payload for EventTypePaymentRecorded.
func PaymentRecordedPayload(p *Payment) map[string]any {
	return map[string]any{
		"payment_id": p.ID,
		"from":       p.FromUserID,
		"to":         p.ToUserID,
		"amount":     p.Amount.StringFixed(2),
	}
}
