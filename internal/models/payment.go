package models

import (
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
)

// PaymentStatus is the status of a mobile-money payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// IsTerminal reports whether no further transition is expected.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCompleted || s == PaymentFailed || s == PaymentCancelled
}

// Payment is a mobile-money payment attempt for an order.
type Payment struct {
	ID        int64         `json:"id"`
	OrderID   int64         `json:"order_id"`
	Phone     string        `json:"phone"`
	Method    PaymentMethod `json:"payment_method"`
	Status    PaymentStatus `json:"status"`
	Amount    money.Amount  `json:"amount"`
	Reference string        `json:"reference,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// InitiatePaymentRequest is the payload of POST /payments/initiate-mobile.
type InitiatePaymentRequest struct {
	OrderID int64         `json:"order_id"`
	Phone   string        `json:"phone"`
	Method  PaymentMethod `json:"payment_method"`
}

// PaymentEnvelope is the {message, payment} response shape.
type PaymentEnvelope struct {
	Message string   `json:"message,omitempty"`
	Payment *Payment `json:"payment"`
}

// ResolvePaymentRequest drives a sandbox payment to a terminal status.
type ResolvePaymentRequest struct {
	Status PaymentStatus `json:"status"`
}
