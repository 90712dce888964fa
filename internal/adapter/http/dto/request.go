package dto

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
)

// NormalizeUserID trims an id and canonicalizes UUIDs to their lowercase
// hyphenated form so the same user is not stored twice. Other ids are kept
// as given.
func NormalizeUserID(id string) string {
	id = strings.TrimSpace(id)
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return id
}

func normalizeUserIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = NormalizeUserID(id)
	}
	return out
}

// CreateTripRequest represents a request to create a trip.
type CreateTripRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Currency    string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTripRequest) ToUseCaseInput(creatorID string) usecase.CreateTripInput {
	return usecase.CreateTripInput{
		CreatorID:   creatorID,
		Name:        r.Name,
		Description: r.Description,
		Currency:    r.Currency,
	}
}

// AddParticipantRequest represents a request to add a user to a trip.
type AddParticipantRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AddParticipantRequest) ToUseCaseInput(tripID, actorID string) usecase.AddParticipantInput {
	return usecase.AddParticipantInput{
		TripID:  tripID,
		ActorID: actorID,
		UserID:  NormalizeUserID(r.UserID),
		Role:    domain.Role(r.Role),
	}
}

// SplitRequest is one participant's part of an exact or percentage split.
type SplitRequest struct {
	UserID  string          `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
}

// CreateExpenseRequest represents a request to record an expense.
type CreateExpenseRequest struct {
	PaidByUserID   string          `json:"paid_by_user_id,omitempty"`
	Description    string          `json:"description"`
	Category       string          `json:"category,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	SplitType      string          `json:"split_type,omitempty"`
	ParticipantIDs []string        `json:"participant_ids,omitempty"`
	Splits         []SplitRequest  `json:"splits,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput(tripID, actorID string) usecase.AddExpenseInput {
	var splits []usecase.SplitInput
	if len(r.Splits) > 0 {
		splits = make([]usecase.SplitInput, len(r.Splits))
		for i, s := range r.Splits {
			splits[i] = usecase.SplitInput{
				UserID:  NormalizeUserID(s.UserID),
				Amount:  s.Amount,
				Percent: s.Percent,
			}
		}
	}

	return usecase.AddExpenseInput{
		TripID:         tripID,
		ActorID:        actorID,
		PaidByUserID:   NormalizeUserID(r.PaidByUserID),
		Description:    r.Description,
		Category:       r.Category,
		Amount:         r.Amount,
		SplitType:      domain.SplitType(r.SplitType),
		ParticipantIDs: normalizeUserIDs(r.ParticipantIDs),
		Splits:         splits,
	}
}

// RecordPaymentRequest represents a request to record a payment.
type RecordPaymentRequest struct {
	FromUserID string          `json:"from_user_id,omitempty"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method,omitempty"`
	Note       string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordPaymentRequest) ToUseCaseInput(tripID, actorID string) usecase.RecordPaymentInput {
	return usecase.RecordPaymentInput{
		TripID:     tripID,
		ActorID:    actorID,
		FromUserID: NormalizeUserID(r.FromUserID),
		ToUserID:   NormalizeUserID(r.ToUserID),
		Amount:     r.Amount,
		Method:     r.Method,
		Note:       r.Note,
	}
}

// UpdateProfileRequest represents a request to update the caller's profile.
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateProfileRequest) ToUseCaseInput(userID string) usecase.SyncProfileInput {
	return usecase.SyncProfileInput{
		UserID:   userID,
		Name:     r.Name,
		Username: r.Username,
		Email:    r.Email,
	}
}
