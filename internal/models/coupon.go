package models

import "github.com/chriskamgang/MyINSAM-Resto/internal/money"

// CouponType selects how a coupon discounts an order.
type CouponType string

const (
	CouponPercentage   CouponType = "percentage"
	CouponFixed        CouponType = "fixed"
	CouponFreeDelivery CouponType = "free_delivery"
)

// Coupon is a validated coupon as attached to a cart.
type Coupon struct {
	Code           string       `json:"code"`
	Type           CouponType   `json:"type"`
	Value          float64      `json:"value,omitempty"`
	Description    string       `json:"description,omitempty"`
	DiscountAmount money.Amount `json:"discount_amount"`
}

// ValidateCouponRequest is the payload of POST /coupons/validate.
type ValidateCouponRequest struct {
	Code         string       `json:"code"`
	Subtotal     money.Amount `json:"subtotal"`
	RestaurantID int64        `json:"restaurant_id"`
}

// CouponValidation is a successful validation result.
type CouponValidation struct {
	Message        string       `json:"message,omitempty"`
	Coupon         Coupon       `json:"coupon"`
	DiscountAmount money.Amount `json:"discount_amount"`
}
