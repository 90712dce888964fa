package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tripledger/internal/adapter/http/dto"
	"github.com/iho/tripledger/internal/usecase"
)

// DashboardService defines the behavior needed for the dashboard endpoint.
type DashboardService interface {
	GetDashboard(ctx context.Context, tripID, userID string) (*usecase.Dashboard, error)
}

// ConsistencyService defines the behavior needed for the consistency endpoint.
type ConsistencyService interface {
	CheckTripAsMember(ctx context.Context, tripID, userID string) (*usecase.ConsistencyReport, error)
}

// LedgerHandler serves the computed views of a trip.
type LedgerHandler struct {
	dashboardUC   DashboardService
	consistencyUC ConsistencyService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(dashboardUC DashboardService, consistencyUC ConsistencyService) *LedgerHandler {
	return &LedgerHandler{
		dashboardUC:   dashboardUC,
		consistencyUC: consistencyUC,
	}
}

// Dashboard returns the trip's records, balances, debts, settlement plan
// and the caller's own view.
func (h *LedgerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	dashboard, err := h.dashboardUC.GetDashboard(r.Context(), chi.URLParam(r, "tripID"), user.ID)
	if err != nil {
		writeDomainError(w, r, "failed to compute dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardFromUseCase(dashboard))
}

// Consistency checks that the trip's stored records reconcile. An
// inconsistent trip is still a successful check.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	report, err := h.consistencyUC.CheckTripAsMember(r.Context(), chi.URLParam(r, "tripID"), user.ID)
	if err != nil {
		writeDomainError(w, r, "failed to check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromUseCase(report))
}
