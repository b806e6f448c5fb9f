package order

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/cart"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

var (
	ErrNoAddress            = apperr.Validation("Please select a delivery address")
	ErrEmptyCart            = apperr.Validation("Your cart is empty")
	ErrInvalidPaymentMethod = apperr.Validation("Please choose a payment method")
)

// Creator is the slice of the order service checkout needs.
type Creator interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
}

// Estimator gives a best-effort delivery time. ok is false when no estimate
// is available.
type Estimator interface {
	DeliveryMinutes(ctx context.Context, from, to models.Coordinates) (minutes int, ok bool)
}

// Next names the view a placed order continues to.
type Next string

const (
	NextConfirmation  Next = "confirmation"
	NextMobilePayment Next = "mobile_payment"
)

type Request struct {
	Address             *models.Address
	PaymentMethod       models.PaymentMethod
	SpecialInstructions string
}

type Result struct {
	Order *models.Order
	Next  Next
	// EstimatedMinutes is meaningful only when HasEstimate is set.
	EstimatedMinutes int
	HasEstimate      bool
}

type CheckoutConfig struct {
	RestaurantID int64
	Origin       models.Coordinates
}

// Checkout turns the cart into an order.
type Checkout struct {
	cfg       CheckoutConfig
	orders    Creator
	cart      *cart.Cart
	estimator Estimator
	logger    *slog.Logger
}

// NewCheckout wires a checkout. estimator may be nil.
func NewCheckout(cfg CheckoutConfig, orders Creator, c *cart.Cart, estimator Estimator, logger *slog.Logger) *Checkout {
	return &Checkout{
		cfg:       cfg,
		orders:    orders,
		cart:      c,
		estimator: estimator,
		logger:    logger,
	}
}

// PlaceOrder validates the request, creates the order and decides where the
// flow goes next. Cash orders clear the cart immediately; mobile-money orders
// leave it for the payment flow to clear once the payment completes.
func (co *Checkout) PlaceOrder(ctx context.Context, req Request) (*Result, error) {
	if req.Address == nil || req.Address.ID == 0 {
		return nil, ErrNoAddress
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	snap := co.cart.Snapshot()
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}

	payload := models.CreateOrderRequest{
		RestaurantID:  co.cfg.RestaurantID,
		AddressID:     req.Address.ID,
		PaymentMethod: req.PaymentMethod,
		Items:         make([]models.OrderItemRequest, 0, len(snap.Lines)),
	}
	if s := strings.TrimSpace(req.SpecialInstructions); s != "" {
		payload.SpecialInstructions = &s
	}
	if snap.Coupon != nil && snap.Coupon.Code != "" {
		code := snap.Coupon.Code
		payload.CouponCode = &code
	}
	for _, l := range snap.Lines {
		payload.Items = append(payload.Items, models.OrderItemRequest{MenuItemID: l.ID, Quantity: l.Quantity})
	}

	created, err := co.orders.CreateOrder(ctx, payload)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperr.ErrEmptyResponse
	}

	res := &Result{Order: created, Next: NextConfirmation}
	res.EstimatedMinutes, res.HasEstimate = co.estimate(ctx, req.Address)

	if req.PaymentMethod.IsMobileMoney() {
		res.Next = NextMobilePayment
		return res, nil
	}

	co.cart.Clear()
	co.logger.Info("order placed",
		"order_id", created.ID,
		"order_number", created.OrderNumber,
		"payment_method", req.PaymentMethod,
		"total", created.Total,
	)
	return res, nil
}

func (co *Checkout) estimate(ctx context.Context, addr *models.Address) (int, bool) {
	if co.estimator == nil {
		return 0, false
	}
	to, ok := addr.Coordinates()
	if !ok {
		return 0, false
	}
	return co.estimator.DeliveryMinutes(ctx, co.cfg.Origin, to)
}

// DefaultAddress picks the address checkout preselects: the default one,
// else the first, else nil.
func DefaultAddress(addrs []models.Address) *models.Address {
	for i := range addrs {
		if addrs[i].IsDefault {
			return &addrs[i]
		}
	}
	if len(addrs) > 0 {
		return &addrs[0]
	}
	return nil
}
