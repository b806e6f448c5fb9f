package handlers

import (
	"log/slog"
	"net/http"

	"github.com/chriskamgang/MyINSAM-Resto/internal/middleware"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/service"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		log:          log,
	}
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), currentUserID(r), req)
	if err != nil {
		writeServiceError(w, err, "create order", h.log)
		return
	}

	WriteMessage(w, http.StatusCreated, "Order placed successfully", "order", order, h.log)
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, err, "list orders", h.log)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"data": orders}, h.log)
}

// GetOrder handles GET /api/orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		writeServiceError(w, service.ErrOrderNotFound, "get order", h.log)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), currentUserID(r), id)
	if err != nil {
		writeServiceError(w, err, "get order", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"order": order}, h.log)
}

// TrackOrder handles GET /api/orders/{orderId}/track
func (h *OrderHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		writeServiceError(w, service.ErrOrderNotFound, "track order", h.log)
		return
	}

	info, err := h.orderService.TrackOrder(r.Context(), currentUserID(r), id)
	if err != nil {
		writeServiceError(w, err, "track order", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, info, h.log)
}

// CancelOrder handles POST /api/orders/{orderId}/cancel. The body is optional.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		writeServiceError(w, service.ErrOrderNotFound, "cancel order", h.log)
		return
	}

	var req models.CancelOrderRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
			return
		}
	}

	order, err := h.orderService.CancelOrder(r.Context(), currentUserID(r), id, req.Reason)
	if err != nil {
		writeServiceError(w, err, "cancel order", h.log)
		return
	}

	WriteMessage(w, http.StatusOK, "Order cancelled", "order", order, h.log)
}

// RateOrder handles POST /api/orders/{orderId}/rate
func (h *OrderHandler) RateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderId")
	if err != nil {
		writeServiceError(w, service.ErrOrderNotFound, "rate order", h.log)
		return
	}

	var req models.RateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.orderService.RateOrder(r.Context(), currentUserID(r), id, req)
	if err != nil {
		writeServiceError(w, err, "rate order", h.log)
		return
	}

	WriteMessage(w, http.StatusOK, "Thank you for your feedback", "order", order, h.log)
}

// currentUserID returns the id of the user BearerAuth resolved
func currentUserID(r *http.Request) int64 {
	if u := middleware.UserFromContext(r.Context()); u != nil {
		return u.ID
	}
	return 0
}
