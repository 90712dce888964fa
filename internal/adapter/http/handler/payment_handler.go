package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tripledger/internal/adapter/http/dto"
	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	RecordPayment(ctx context.Context, input usecase.RecordPaymentInput) (*domain.Payment, error)
	ListPayments(ctx context.Context, tripID, userID string) ([]*domain.Payment, error)
}

// PaymentHandler handles payment HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Create records a payment made by the caller.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.paymentUC.RecordPayment(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "tripID"), user.ID))
	if err != nil {
		writeDomainError(w, r, "failed to record payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// List lists a trip's payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	payments, err := h.paymentUC.ListPayments(r.Context(), chi.URLParam(r, "tripID"), user.ID)
	if err != nil {
		writeDomainError(w, r, "failed to list payments", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentsFromDomain(payments))
}
