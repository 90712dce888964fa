package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/ledger"
	"github.com/iho/tripledger/internal/money"
	"github.com/iho/tripledger/internal/usecase"
)

// UserResponse represents a user profile in API responses.
type UserResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username,omitempty"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		CreatedAt:   u.CreatedAt,
	}
}

// TripResponse represents a trip in API responses.
type TripResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Currency    string    `json:"currency"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// TripFromDomain converts a domain trip to response.
func TripFromDomain(t *domain.Trip) *TripResponse {
	return &TripResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Currency:    t.Currency,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}

// TripsFromDomain converts domain trips to responses.
func TripsFromDomain(trips []*domain.Trip) []*TripResponse {
	result := make([]*TripResponse, len(trips))
	for i, t := range trips {
		result[i] = TripFromDomain(t)
	}
	return result
}

// ParticipantResponse represents a trip member in API responses.
type ParticipantResponse struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// ParticipantFromDomain converts a domain participant to response.
func ParticipantFromDomain(p *domain.Participant) *ParticipantResponse {
	return &ParticipantResponse{
		UserID:   p.User.ID,
		Name:     p.User.DisplayName(),
		Role:     string(p.Role),
		JoinedAt: p.JoinedAt,
	}
}

// ParticipantsFromDomain converts domain participants to responses.
func ParticipantsFromDomain(participants []*domain.Participant) []*ParticipantResponse {
	result := make([]*ParticipantResponse, len(participants))
	for i, p := range participants {
		result[i] = ParticipantFromDomain(p)
	}
	return result
}

// ShareResponse is one user's part of an expense.
type ShareResponse struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID           string          `json:"id"`
	TripID       string          `json:"trip_id"`
	PaidByUserID string          `json:"paid_by_user_id"`
	Description  string          `json:"description"`
	Category     string          `json:"category,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Shares       []ShareResponse `json:"shares"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ExpenseFromDomain converts a domain expense to response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	shares := make([]ShareResponse, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = ShareResponse{UserID: s.UserID, Amount: s.Amount}
	}
	return &ExpenseResponse{
		ID:           e.ID,
		TripID:       e.TripID,
		PaidByUserID: e.PaidByUserID,
		Description:  e.Description,
		Category:     e.Category,
		Amount:       e.Amount,
		Shares:       shares,
		CreatedAt:    e.CreatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID         string          `json:"id"`
	TripID     string          `json:"trip_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:         p.ID,
		TripID:     p.TripID,
		FromUserID: p.FromUserID,
		ToUserID:   p.ToUserID,
		Amount:     p.Amount,
		Method:     p.Method,
		Note:       p.Note,
		CreatedAt:  p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// DashboardResponse is a trip's records, its engine report and the
// caller's own view of it. The report keeps the engine's JSON form.
type DashboardResponse struct {
	Trip         *TripResponse          `json:"trip"`
	Participants []*ParticipantResponse `json:"participants"`
	Expenses     []*ExpenseResponse     `json:"expenses"`
	Payments     []*PaymentResponse     `json:"payments"`
	Report       *ledger.Report         `json:"report"`
	YouOwe       ledger.Obligations     `json:"you_owe"`
	YouAreOwed   ledger.Receivables     `json:"you_are_owed"`
}

// DashboardFromUseCase converts a dashboard to response.
func DashboardFromUseCase(d *usecase.Dashboard) *DashboardResponse {
	resp := &DashboardResponse{
		Participants: ParticipantsFromDomain(d.Participants),
		Expenses:     ExpensesFromDomain(d.Expenses),
		Payments:     PaymentsFromDomain(d.Payments),
		Report:       d.Report,
		YouOwe:       d.UserView.YouOwe,
		YouAreOwed:   d.UserView.YouAreOwed,
	}
	if d.Trip != nil {
		resp.Trip = TripFromDomain(d.Trip)
	}
	return resp
}

// ConsistencyResponse is the outcome of a consistency check.
type ConsistencyResponse struct {
	TripID               string               `json:"trip_id"`
	Consistent           bool                 `json:"consistent"`
	TotalResidual        money.Amount         `json:"total_residual"`
	BalanceSum           money.Amount         `json:"balance_sum"`
	ExpenseDiscrepancies []ledger.Discrepancy `json:"expense_discrepancies"`
	CheckedAt            time.Time            `json:"checked_at"`
	Error                string               `json:"error,omitempty"`
}

// ConsistencyFromUseCase converts a consistency report to response.
func ConsistencyFromUseCase(r *usecase.ConsistencyReport) *ConsistencyResponse {
	discrepancies := r.ExpenseDiscrepancies
	if discrepancies == nil {
		discrepancies = []ledger.Discrepancy{}
	}
	return &ConsistencyResponse{
		TripID:               r.TripID,
		Consistent:           r.Consistent,
		TotalResidual:        r.TotalResidual,
		BalanceSum:           r.BalanceSum,
		ExpenseDiscrepancies: discrepancies,
		CheckedAt:            r.CheckedAt,
		Error:                r.Error,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
