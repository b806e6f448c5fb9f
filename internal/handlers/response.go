package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chriskamgang/MyINSAM-Resto/internal/coupon"
	"github.com/chriskamgang/MyINSAM-Resto/internal/repository"
	"github.com/chriskamgang/MyINSAM-Resto/internal/service"
)

const maxBodyBytes = 1 << 20

var errBadID = errors.New("invalid id")

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response as {"message": ...}
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, map[string]string{"message": message}, logger)
}

// WriteMessage writes a {"message": ...} body next to one enveloped value,
// e.g. {"message": "Order placed", "order": {...}}.
func WriteMessage(w http.ResponseWriter, status int, message, key string, value interface{}, logger *slog.Logger) {
	body := map[string]interface{}{"message": message}
	if key != "" {
		body[key] = value
	}
	WriteJSON(w, status, body, logger)
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(r *http.Request, v interface{}) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return err
	}
	return nil
}

// idParam parses a positive integer URL parameter
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// errorResponse maps service errors to a status and a customer-facing message
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, errBadID):
		return http.StatusNotFound, "Not found"

	case errors.Is(err, service.ErrMissingFields):
		return http.StatusUnprocessableEntity, "Name, email and password are required"
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusUnprocessableEntity, "Please enter a valid email address"
	case errors.Is(err, service.ErrPasswordTooShort):
		return http.StatusUnprocessableEntity, "Password must be at least 6 characters"
	case errors.Is(err, service.ErrPasswordMismatch):
		return http.StatusUnprocessableEntity, "Passwords do not match"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusUnprocessableEntity, "This email is already registered"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthenticated."

	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrNameRequired):
		return http.StatusUnprocessableEntity, "Please enter your name"
	case errors.Is(err, service.ErrAddressRequired):
		return http.StatusUnprocessableEntity, "Please enter an address"
	case errors.Is(err, service.ErrAddressNotFound):
		return http.StatusNotFound, "Address not found"
	case errors.Is(err, service.ErrNotificationNotFound):
		return http.StatusNotFound, "Notification not found"

	case errors.Is(err, service.ErrEmptyOrder):
		return http.StatusUnprocessableEntity, "Order must contain at least one item"
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity, "Quantity must be positive"
	case errors.Is(err, service.ErrInvalidItem):
		return http.StatusUnprocessableEntity, "Invalid menu item"
	case errors.Is(err, service.ErrItemUnavailable):
		return http.StatusUnprocessableEntity, "Some items are no longer available"
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		return http.StatusUnprocessableEntity, "Invalid payment method"
	case errors.Is(err, service.ErrInvalidCoupon):
		return http.StatusUnprocessableEntity, coupon.Message(err)
	case errors.Is(err, service.ErrRestaurantClosed):
		return http.StatusConflict, "The restaurant is closed"
	case errors.Is(err, service.ErrRestaurantNotFound), errors.Is(err, repository.ErrRestaurantNotFound):
		return http.StatusNotFound, "Restaurant not found"
	case errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, service.ErrCannotCancel):
		return http.StatusConflict, "This order can no longer be cancelled"
	case errors.Is(err, service.ErrInvalidRating):
		return http.StatusUnprocessableEntity, "Ratings must be between 1 and 5"
	case errors.Is(err, service.ErrNotDelivered):
		return http.StatusUnprocessableEntity, "Only delivered orders can be rated"
	case errors.Is(err, service.ErrAlreadyRated):
		return http.StatusConflict, "This order has already been rated"
	case errors.Is(err, service.ErrOrderFinished):
		return http.StatusConflict, "This order is already delivered or cancelled"
	case errors.Is(err, service.ErrAwaitingPayment):
		return http.StatusConflict, "This order is waiting for its payment"

	case errors.Is(err, service.ErrNotMobileMoney):
		return http.StatusUnprocessableEntity, "This order is not paid by mobile money"
	case errors.Is(err, service.ErrInvalidPhone):
		return http.StatusUnprocessableEntity, "Please enter a valid mobile money number"
	case errors.Is(err, service.ErrMethodMismatch):
		return http.StatusUnprocessableEntity, "Payment method does not match the order"
	case errors.Is(err, service.ErrAlreadyPaid):
		return http.StatusConflict, "This order is already paid"
	case errors.Is(err, service.ErrPaymentInProgress):
		return http.StatusConflict, "A payment is already in progress for this order"
	case errors.Is(err, service.ErrPaymentNotFound):
		return http.StatusNotFound, "Payment not found"
	case errors.Is(err, service.ErrPaymentSettled):
		return http.StatusConflict, "This payment is no longer pending"
	case errors.Is(err, service.ErrInvalidPaymentStep):
		return http.StatusUnprocessableEntity, "Status must be completed, failed or cancelled"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// writeServiceError logs and writes the response for a service error
func writeServiceError(w http.ResponseWriter, err error, op string, logger *slog.Logger) {
	status, message := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", "error", err)
	} else {
		logger.Debug(op+" rejected", "status", status, "error", err)
	}
	WriteError(w, status, message, logger)
}
