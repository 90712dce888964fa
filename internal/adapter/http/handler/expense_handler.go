package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tripledger/internal/adapter/http/dto"
	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
)

// ExpenseService defines the behavior needed by ExpenseHandler.
type ExpenseService interface {
	AddExpense(ctx context.Context, input usecase.AddExpenseInput) (*domain.Expense, error)
	ListExpenses(ctx context.Context, tripID, userID string) ([]*domain.Expense, error)
}

// ExpenseHandler handles expense HTTP requests.
type ExpenseHandler struct {
	expenseUC ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseUC ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseUC: expenseUC}
}

// Create records an expense and its shares.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.expenseUC.AddExpense(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "tripID"), user.ID))
	if err != nil {
		writeDomainError(w, r, "failed to add expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// List lists a trip's expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	expenses, err := h.expenseUC.ListExpenses(r.Context(), chi.URLParam(r, "tripID"), user.ID)
	if err != nil {
		writeDomainError(w, r, "failed to list expenses", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpensesFromDomain(expenses))
}
