package models

import (
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentMTNMoMo     PaymentMethod = "mtn_momo"
	PaymentOrangeMoney PaymentMethod = "orange_money"
)

// Valid reports whether m is one of the supported methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentMTNMoMo, PaymentOrangeMoney:
		return true
	}
	return false
}

// IsMobileMoney reports whether the method goes through the payment sub-flow.
func (m PaymentMethod) IsMobileMoney() bool {
	return m == PaymentMTNMoMo || m == PaymentOrangeMoney
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "Cash on delivery"
	case PaymentMTNMoMo:
		return "MTN Mobile Money"
	case PaymentOrangeMoney:
		return "Orange Money"
	}
	return string(m)
}

// Order payment statuses reported alongside the order.
const (
	OrderPaymentPending = "pending"
	OrderPaymentPaid    = "paid"
	OrderPaymentFailed  = "failed"
	OrderPaymentRefund  = "refund_pending"
)

// OrderStatus is the server-reported lifecycle status. Values outside the
// known set are kept as-is.
type OrderStatus string

// OrderItemRequest is one line of a create-order request.
type OrderItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// CreateOrderRequest is the payload of POST /orders.
type CreateOrderRequest struct {
	RestaurantID        int64              `json:"restaurant_id"`
	AddressID           int64              `json:"address_id"`
	PaymentMethod       PaymentMethod      `json:"payment_method"`
	SpecialInstructions *string            `json:"special_instructions"`
	CouponCode          *string            `json:"coupon_code"`
	Items               []OrderItemRequest `json:"items"`
}

// OrderItem is a priced line of a persisted order.
type OrderItem struct {
	MenuItemID int64        `json:"menu_item_id"`
	Name       string       `json:"name"`
	UnitPrice  money.Amount `json:"unit_price"`
	Quantity   int          `json:"quantity"`
	Total      money.Amount `json:"total"`
}

func (i OrderItem) LinePrice() money.Amount { return i.UnitPrice }
func (i OrderItem) LineQuantity() int { return i.Quantity }

// Order is the client's read-only projection of a backend order.
type Order struct {
	ID                    int64         `json:"id"`
	OrderNumber           string        `json:"order_number"`
	UserID                int64         `json:"user_id,omitempty"`
	RestaurantID          int64         `json:"restaurant_id"`
	Items                 []OrderItem   `json:"items"`
	AddressID             int64         `json:"address_id"`
	Address               *Address      `json:"address,omitempty"`
	PaymentMethod         PaymentMethod `json:"payment_method"`
	PaymentStatus         string        `json:"payment_status,omitempty"`
	SpecialInstructions   *string       `json:"special_instructions,omitempty"`
	CouponCode            *string       `json:"coupon_code,omitempty"`
	Subtotal              money.Amount  `json:"subtotal"`
	DeliveryFee           money.Amount  `json:"delivery_fee"`
	Discount              money.Amount  `json:"discount"`
	Total                 money.Amount  `json:"total"`
	Status                OrderStatus   `json:"status"`
	CreatedAt             time.Time     `json:"created_at"`
	EstimatedDeliveryTime *time.Time    `json:"estimated_delivery_time,omitempty"`
	Rating                *OrderRating  `json:"rating,omitempty"`
	CancellationReason    string        `json:"cancellation_reason,omitempty"`
}

// OrderEnvelope is the {message, order} shape some endpoints answer with.
type OrderEnvelope struct {
	Message string `json:"message,omitempty"`
	Order   *Order `json:"order"`
}

// CancelOrderRequest is the payload of POST /orders/{id}/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// RateOrderRequest is the payload of POST /orders/{id}/rate.
type RateOrderRequest struct {
	RestaurantRating int    `json:"restaurant_rating"`
	DriverRating     int    `json:"driver_rating"`
	Comment          string `json:"comment"`
}

// OrderRating is stored once a delivered order is rated.
type OrderRating struct {
	RestaurantRating int       `json:"restaurant_rating"`
	DriverRating     int       `json:"driver_rating"`
	Comment          string    `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
