package handlers

import (
	"log/slog"
	"net/http"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/service"
)

// SandboxHandler lets a tester play the restaurant and the mobile money
// operator by hand.
type SandboxHandler struct {
	orderService   *service.OrderService
	paymentService *service.PaymentService
	log            *slog.Logger
}

func NewSandboxHandler(orderService *service.OrderService, paymentService *service.PaymentService, log *slog.Logger) *SandboxHandler {
	return &SandboxHandler{
		orderService:   orderService,
		paymentService: paymentService,
		log:            log,
	}
}

// AdvanceOrder handles POST /api/sandbox/orders/{orderId}/advance
func (h *SandboxHandler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		writeServiceError(w, service.ErrOrderNotFound, "advance order", h.log)
		return
	}

	order, err := h.orderService.AdvanceOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "advance order", h.log)
		return
	}
	WriteMessage(w, http.StatusOK, "Order advanced", "order", order, h.log)
}

// ResolvePayment handles POST /api/sandbox/payments/{paymentId}/resolve
func (h *SandboxHandler) ResolvePayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "paymentId")
	if err != nil {
		writeServiceError(w, service.ErrPaymentNotFound, "resolve payment", h.log)
		return
	}

	var req models.ResolvePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	p, err := h.paymentService.Resolve(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err, "resolve payment", h.log)
		return
	}
	WriteMessage(w, http.StatusOK, "Payment resolved", "payment", p, h.log)
}
