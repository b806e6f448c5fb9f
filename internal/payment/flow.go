// Package payment drives the mobile-money sub-flow of a placed order:
// initiate, poll the status until it settles, then clear the cart on success
// or offer a retry or cash fallback.
package payment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/poller"
)

// DefaultInterval is the status poll interval when none is configured.
const DefaultInterval = 5 * time.Second

var (
	ErrNotMobileMoney = apperr.Validation("Order is not paid with mobile money")
	ErrInProgress     = apperr.Validation("A payment is already in progress")
	ErrClosed         = apperr.Validation("Payment screen was closed")
	ErrNotRetryable   = apperr.Validation("Nothing to retry")
	ErrAlreadyPaid    = apperr.Validation("Order is already paid")
)

// Service is the payment collaborator.
type Service interface {
	InitiateMobilePayment(ctx context.Context, req models.InitiatePaymentRequest) (*models.Payment, error)
	CheckPaymentStatus(ctx context.Context, id int64) (*models.Payment, error)
}

// Cart is what the flow clears once the payment completes.
type Cart interface {
	Clear()
}

// State of the flow as seen by its view.
type State string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
	// StateAbandoned means the customer chose to reorder with cash.
	StateAbandoned State = "abandoned"
)

// Update is emitted on every state change.
type Update struct {
	State   State
	Payment *models.Payment
}

type Config struct {
	Interval time.Duration
}

// Flow is owned by a single payment view. Close must be called when the view
// goes away. No update starts once Close has returned; one already being
// delivered to onUpdate on the polling goroutine may still finish.
type Flow struct {
	svc      Service
	cart     Cart
	order    *models.Order
	interval time.Duration
	onUpdate func(Update)
	logger   *slog.Logger

	mu         sync.Mutex
	state      State
	payment    *models.Payment
	task       *poller.Task
	gen        int
	closed     bool
	initiating bool
	cleared    bool
}

// NewFlow prepares a flow for a mobile-money order. onUpdate may be nil; it is
// called from the polling goroutine.
func NewFlow(cfg Config, svc Service, cart Cart, o *models.Order, onUpdate func(Update), logger *slog.Logger) (*Flow, error) {
	if o == nil || !o.PaymentMethod.IsMobileMoney() {
		return nil, ErrNotMobileMoney
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}
	return &Flow{
		svc:      svc,
		cart:     cart,
		order:    o,
		interval: cfg.Interval,
		onUpdate: onUpdate,
		logger:   logger.With("order_id", o.ID),
		state:    StateIdle,
	}, nil
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Payment returns the current attempt, nil when idle.
func (f *Flow) Payment() *models.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payment == nil {
		return nil
	}
	p := *f.payment
	return &p
}

// Initiate validates the phone, starts a payment and begins polling its
// status. It is only allowed from the idle state.
func (f *Flow) Initiate(ctx context.Context, phone string) (*models.Payment, error) {
	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return nil, ErrClosed
	case f.state != StateIdle || f.initiating:
		f.mu.Unlock()
		return nil, ErrInProgress
	}
	f.initiating = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.initiating = false
		f.mu.Unlock()
	}()

	normalized, err := ValidatePhone(phone)
	if err != nil {
		return nil, err
	}

	p, err := f.svc.InitiateMobilePayment(ctx, models.InitiatePaymentRequest{
		OrderID: f.order.ID,
		Phone:   normalized,
		Method:  f.order.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrEmptyResponse
	}

	f.mu.Lock()
	if f.closed || f.state != StateIdle {
		f.mu.Unlock()
		return nil, ErrClosed
	}
	f.payment = p
	f.state = StatePending
	f.logger.Info("mobile payment initiated", "payment_id", p.ID, "method", p.Method)

	if p.Status.IsTerminal() {
		u := f.settleLocked(p)
		f.mu.Unlock()
		f.emit(u)
		return p, nil
	}

	paymentID := p.ID
	f.gen++
	gen := f.gen
	f.task = poller.Start(context.Background(), f.interval,
		func(ctx context.Context) (*models.Payment, error) {
			return f.svc.CheckPaymentStatus(ctx, paymentID)
		},
		func(p *models.Payment, err error) bool {
			return f.handle(gen, p, err)
		},
	)
	f.mu.Unlock()

	f.emit(Update{State: StatePending, Payment: p})
	return p, nil
}

// handle processes one status poll. It returns false to stop polling.
func (f *Flow) handle(gen int, p *models.Payment, err error) bool {
	f.mu.Lock()
	if f.closed || f.gen != gen || f.state != StatePending {
		f.mu.Unlock()
		return false
	}
	if err != nil {
		f.mu.Unlock()
		f.logger.Warn("payment status check failed", "error", err)
		return true
	}
	if p == nil || !p.Status.IsTerminal() {
		f.mu.Unlock()
		return true
	}
	u := f.settleLocked(p)
	f.mu.Unlock()

	f.emit(u)
	return false
}

func (f *Flow) settleLocked(p *models.Payment) Update {
	f.payment = p
	switch p.Status {
	case models.PaymentCompleted:
		f.state = StateCompleted
		if !f.cleared {
			f.cart.Clear()
			f.cleared = true
		}
		f.logger.Info("mobile payment completed", "payment_id", p.ID)
	case models.PaymentCancelled:
		f.state = StateCancelled
		f.logger.Info("mobile payment cancelled", "payment_id", p.ID)
	default:
		f.state = StateFailed
		f.logger.Info("mobile payment failed", "payment_id", p.ID, "status", p.Status)
	}
	cp := *p
	return Update{State: f.state, Payment: &cp}
}

// Retry discards a failed or cancelled attempt and returns to idle.
func (f *Flow) Retry() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.state != StateFailed && f.state != StateCancelled {
		f.mu.Unlock()
		return ErrNotRetryable
	}
	task := f.task
	f.task = nil
	f.payment = nil
	f.state = StateIdle
	f.mu.Unlock()

	if task != nil {
		task.Cancel()
	}
	f.emit(Update{State: StateIdle})
	return nil
}

// FallbackToCash abandons mobile payment. The cart is kept so checkout can
// place it again as cash on delivery; the unpaid order stays pending until
// the customer cancels it.
func (f *Flow) FallbackToCash() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.state == StateCompleted {
		f.mu.Unlock()
		return ErrAlreadyPaid
	}
	task := f.task
	f.task = nil
	f.state = StateAbandoned
	f.mu.Unlock()

	if task != nil {
		task.Cancel()
	}
	f.logger.Info("mobile payment abandoned for cash on delivery")
	f.emit(Update{State: StateAbandoned})
	return nil
}

// emit delivers u unless the flow has been closed.
func (f *Flow) emit(u Update) {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return
	}
	f.onUpdate(u)
}

// Close stops polling. Results that arrive afterwards are dropped.
func (f *Flow) Close() {
	f.mu.Lock()
	f.closed = true
	task := f.task
	f.task = nil
	f.mu.Unlock()

	if task != nil {
		task.Cancel()
	}
}
