package handlers

import (
	"log/slog"
	"net/http"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/service"
)

// PaymentHandler handles mobile money payment requests
type PaymentHandler struct {
	paymentService *service.PaymentService
	log            *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService, log *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		log:            log,
	}
}

// InitiateMobile handles POST /api/payments/initiate-mobile
func (h *PaymentHandler) InitiateMobile(w http.ResponseWriter, r *http.Request) {
	var req models.InitiatePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	p, err := h.paymentService.Initiate(r.Context(), currentUserID(r), req)
	if err != nil {
		writeServiceError(w, err, "initiate payment", h.log)
		return
	}

	WriteMessage(w, http.StatusCreated, "Confirm the payment on your phone", "payment", p, h.log)
}

// Status handles GET /api/payments/{paymentId}/status
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "paymentId")
	if err != nil {
		writeServiceError(w, service.ErrPaymentNotFound, "payment status", h.log)
		return
	}

	p, err := h.paymentService.Status(r.Context(), currentUserID(r), id)
	if err != nil {
		writeServiceError(w, err, "payment status", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"payment": p}, h.log)
}
