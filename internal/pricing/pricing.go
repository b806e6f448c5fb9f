// Package pricing holds the money rules shared by the cart and the order
// service so both sides compute identical totals.
package pricing

import (
	"math"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
)

// DefaultDeliveryFee is the base fee when no configuration overrides it.
const DefaultDeliveryFee money.Amount = 500

// Line is anything that contributes unitPrice × quantity to a subtotal.
type Line interface {
	LinePrice() money.Amount
	LineQuantity() int
}

// Subtotal sums price × quantity over all lines.
func Subtotal[L Line](lines []L) money.Amount {
	var sum money.Amount
	for _, l := range lines {
		sum += l.LinePrice().Times(l.LineQuantity())
	}
	return sum
}

// DeliveryFee is zero for an empty order or a free-delivery coupon.
func DeliveryFee(subtotal money.Amount, couponType models.CouponType, base money.Amount) money.Amount {
	if subtotal == 0 {
		return 0
	}
	if couponType == models.CouponFreeDelivery {
		return 0
	}
	return base
}

// Total never goes below zero.
func Total(subtotal, deliveryFee, discount money.Amount) money.Amount {
	return money.Max(0, subtotal+deliveryFee-discount)
}

// Rule describes a coupon's discount on the backend.
type Rule struct {
	Type        models.CouponType
	Value       float64
	MaxDiscount money.Amount // zero means uncapped
}

// Discount computes the amount a coupon takes off a subtotal. The result is
// never negative; free delivery discounts nothing here because the fee rule
// handles it.
func Discount(r Rule, subtotal money.Amount) money.Amount {
	var d money.Amount
	switch r.Type {
	case models.CouponPercentage:
		d = money.Amount(math.Round(float64(subtotal) * r.Value / 100))
	case models.CouponFixed:
		d = money.Amount(math.Round(r.Value))
	default:
		return 0
	}
	if r.MaxDiscount > 0 && d > r.MaxDiscount {
		d = r.MaxDiscount
	}
	return money.Max(0, d)
}

// Breakdown is the full set of derived amounts for an order or cart.
type Breakdown struct {
	Subtotal    money.Amount `json:"subtotal"`
	DeliveryFee money.Amount `json:"delivery_fee"`
	Discount    money.Amount `json:"discount"`
	Total       money.Amount `json:"total"`
}

// Compute derives a Breakdown from a subtotal and an optional applied coupon.
func Compute(subtotal money.Amount, coupon *models.Coupon, baseFee money.Amount) Breakdown {
	var couponType models.CouponType
	var discount money.Amount
	if coupon != nil {
		couponType = coupon.Type
		discount = coupon.DiscountAmount
	}
	fee := DeliveryFee(subtotal, couponType, baseFee)
	return Breakdown{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Discount:    discount,
		Total:       Total(subtotal, fee, discount),
	}
}
