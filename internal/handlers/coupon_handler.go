package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chriskamgang/MyINSAM-Resto/internal/coupon"
	"github.com/chriskamgang/MyINSAM-Resto/internal/middleware"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
)

// couponValidator is the interface for coupon validation
type couponValidator interface {
	Validate(ctx context.Context, code string, subtotal money.Amount, userID int64) (*models.CouponValidation, error)
	GetStats() map[string]interface{}
}

// CouponHandler handles HTTP requests for coupon validation
type CouponHandler struct {
	validator couponValidator
	log       *slog.Logger
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(validator couponValidator, log *slog.Logger) *CouponHandler {
	return &CouponHandler{
		validator: validator,
		log:       log,
	}
}

// ValidateCoupon handles POST /api/coupons/validate. A rejected code answers
// 422 with the reason in "message".
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		WriteError(w, http.StatusUnprocessableEntity, "Please enter a coupon code", h.log)
		return
	}

	var userID int64
	if u := middleware.UserFromContext(r.Context()); u != nil {
		userID = u.ID
	}

	v, err := h.validator.Validate(r.Context(), req.Code, req.Subtotal, userID)
	if err != nil {
		if isCouponRejection(err) {
			h.log.Debug("coupon rejected", "code", req.Code, "error", err)
			WriteError(w, http.StatusUnprocessableEntity, coupon.Message(err), h.log)
			return
		}
		writeServiceError(w, err, "validate coupon", h.log)
		return
	}

	if v.Message == "" {
		v.Message = "Coupon applied"
	}
	WriteJSON(w, http.StatusOK, v, h.log)
}

// GetStats handles GET /api/coupons/stats (for debugging/monitoring)
func (h *CouponHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.validator.GetStats(), h.log)
}

func isCouponRejection(err error) bool {
	return errors.Is(err, coupon.ErrNotFound) ||
		errors.Is(err, coupon.ErrExpired) ||
		errors.Is(err, coupon.ErrBelowMinimum) ||
		errors.Is(err, coupon.ErrAlreadyUsed)
}
