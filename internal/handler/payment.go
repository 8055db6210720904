package handler

import (
	"net/http"

	"github.com/segyhp/emi-ledger/internal/domain"
	"github.com/segyhp/emi-ledger/pkg/response"

	"github.com/go-playground/validator/v10"
)

type PaymentHandler struct {
	service   PaymentLedger
	validator *validator.Validate
}

func NewPaymentHandler(service PaymentLedger) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: NewValidator(),
	}
}

// ApplyPayment handles POST /api/payments
func (h *PaymentHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	var request domain.ApplyPaymentRequest
	if !decodeAndValidate(w, r, h.validator, &request) {
		return
	}

	receipt, err := h.service.ApplyPayment(r.Context(), &request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, domain.ApplyPaymentResponse{
		Message:        "Payment successful!",
		PaymentReceipt: receipt,
	})
}

// ProcessPayment handles POST /api/process-payment. The payment is answered
// as Pending and settles in the background; poll GET /api/payments/{id}.
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var request domain.GatewayPaymentRequest
	if !decodeAndValidate(w, r, h.validator, &request) {
		return
	}

	payment, err := h.service.SimulateGatewayPayment(r.Context(), &request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusAccepted, domain.GatewayPaymentResponse{
		Message:   "Payment accepted for processing",
		PaymentID: payment.ID,
		Status:    payment.Status,
		Reference: payment.Reference,
	})
}

// GetPayment handles GET /api/payments/{id}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payment, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, payment)
}

// ListPayments handles GET /api/applications/{id}/payments
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, payments)
}
