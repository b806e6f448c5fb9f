package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/order"
	"github.com/chriskamgang/MyINSAM-Resto/internal/payment"
	"github.com/chriskamgang/MyINSAM-Resto/internal/repository"
)

var (
	ErrNotMobileMoney     = errors.New("order is not paid by mobile money")
	ErrInvalidPhone       = errors.New("invalid mobile money number")
	ErrMethodMismatch     = errors.New("payment method does not match the order")
	ErrAlreadyPaid        = errors.New("order is already paid")
	ErrPaymentInProgress  = errors.New("a payment is already in progress for this order")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentSettled     = errors.New("payment is no longer pending")
	ErrInvalidPaymentStep = errors.New("payment can only resolve to completed, failed or cancelled")
)

// PaymentOrders is the slice of the order service payments report to
type PaymentOrders interface {
	MarkPaid(ctx context.Context, orderID int64) error
	MarkPaymentFailed(ctx context.Context, orderID int64) error
}

// PaymentService runs sandbox mobile money payments
type PaymentService struct {
	orders  repository.OrderRepository
	results PaymentOrders
	now     func() time.Time
	logger  *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(orders repository.OrderRepository, results PaymentOrders, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		orders:  orders,
		results: results,
		now:     time.Now,
		logger:  logger,
	}
}

// Initiate starts a pending payment for a mobile money order
func (s *PaymentService) Initiate(ctx context.Context, userID int64, req models.InitiatePaymentRequest) (*models.Payment, error) {
	rec, err := s.orders.GetOrder(ctx, req.OrderID)
	if err != nil || rec.UserID != userID {
		return nil, ErrOrderNotFound
	}
	if !rec.PaymentMethod.IsMobileMoney() {
		return nil, ErrNotMobileMoney
	}
	if req.Method == "" {
		req.Method = rec.PaymentMethod
	}
	if req.Method != rec.PaymentMethod {
		return nil, ErrMethodMismatch
	}
	if rec.PaymentStatus == models.OrderPaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if order.IsTerminal(rec.Status) {
		return nil, ErrOrderFinished
	}
	phone, err := payment.ValidatePhone(req.Phone)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	p, err := s.orders.CreatePayment(ctx, models.Payment{
		OrderID:   rec.ID,
		Phone:     phone,
		Method:    req.Method,
		Status:    models.PaymentPending,
		Amount:    rec.Total,
		Reference: uuid.NewString(),
		CreatedAt: s.now().UTC(),
	})
	if errors.Is(err, repository.ErrPaymentInProgress) {
		return nil, ErrPaymentInProgress
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment initiated", "payment_id", p.ID, "order_id", p.OrderID, "method", p.Method, "amount", int64(p.Amount))
	return p, nil
}

// Status returns a payment of one of the user's orders
func (s *PaymentService) Status(ctx context.Context, userID, id int64) (*models.Payment, error) {
	p, err := s.orders.GetPayment(ctx, id)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	rec, err := s.orders.GetOrder(ctx, p.OrderID)
	if err != nil || rec.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// Resolve drives a pending payment to a terminal status and reports the
// outcome to the order.
func (s *PaymentService) Resolve(ctx context.Context, id int64, status models.PaymentStatus) (*models.Payment, error) {
	if !status.IsTerminal() {
		return nil, ErrInvalidPaymentStep
	}
	p, err := s.orders.UpdatePayment(ctx, id, func(p *models.Payment) error {
		if p.Status != models.PaymentPending {
			return ErrPaymentSettled
		}
		p.Status = status
		return nil
	})
	if errors.Is(err, repository.ErrPaymentNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	if status == models.PaymentCompleted {
		err = s.results.MarkPaid(ctx, p.OrderID)
	} else {
		err = s.results.MarkPaymentFailed(ctx, p.OrderID)
	}
	if err != nil {
		s.logger.Error("failed to report payment to order", "payment_id", id, "order_id", p.OrderID, "error", err)
	}

	s.logger.Info("payment resolved", "payment_id", id, "order_id", p.OrderID, "status", status)
	return p, nil
}

// Pending lists payments still waiting for the customer
func (s *PaymentService) Pending(ctx context.Context) ([]models.Payment, error) {
	return s.orders.ListPendingPayments(ctx)
}
