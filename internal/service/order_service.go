package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
	"github.com/chriskamgang/MyINSAM-Resto/internal/order"
	"github.com/chriskamgang/MyINSAM-Resto/internal/pricing"
	"github.com/chriskamgang/MyINSAM-Resto/internal/repository"
	"github.com/chriskamgang/MyINSAM-Resto/internal/routing"
)

var (
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidItem          = errors.New("invalid menu item")
	ErrItemUnavailable      = errors.New("menu item is not available")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidCoupon        = errors.New("coupon code is not valid")
	ErrRestaurantNotFound   = errors.New("restaurant not found")
	ErrRestaurantClosed     = errors.New("restaurant is closed")
	ErrOrderNotFound        = errors.New("order not found")
	ErrCannotCancel         = errors.New("order can no longer be cancelled")
	ErrNotDelivered         = errors.New("only delivered orders can be rated")
	ErrAlreadyRated         = errors.New("order already rated")
	ErrInvalidRating        = errors.New("ratings must be between 1 and 5")
	ErrOrderFinished        = errors.New("order is already delivered or cancelled")
	ErrAwaitingPayment      = errors.New("order is waiting for its mobile money payment")
)

// CouponRedeemer is the coupon catalog as the order service uses it
type CouponRedeemer interface {
	Redeem(ctx context.Context, code string, subtotal money.Amount, userID int64) (*models.CouponValidation, error)
	Release(code string, userID int64)
}

// Notifier records user-facing notifications
type Notifier interface {
	Notify(ctx context.Context, userID, orderID int64, kind, title, message string)
}

// OrderConfig tunes delivery estimates
type OrderConfig struct {
	PrepTime time.Duration
	SpeedKmh float64
}

var sandboxDrivers = []models.Driver{
	{ID: 1, Name: "Junior Tchoupo", Phone: "+237 677 11 22 33", VehicleType: "moto"},
	{ID: 2, Name: "Brice Fotso", Phone: "+237 699 44 55 66", VehicleType: "moto"},
	{ID: 3, Name: "Estelle Nguimfack", Phone: "+237 655 77 88 99", VehicleType: "voiture"},
}

// OrderService handles order business logic
type OrderService struct {
	menu     repository.MenuRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	coupons  CouponRedeemer
	notifier Notifier
	cfg      OrderConfig
	now      func() time.Time
	logger   *slog.Logger
}

// NewOrderService creates a new order service
func NewOrderService(menu repository.MenuRepository, orders repository.OrderRepository, users repository.UserRepository, coupons CouponRedeemer, notifier Notifier, cfg OrderConfig, logger *slog.Logger) *OrderService {
	if cfg.PrepTime <= 0 {
		cfg.PrepTime = 20 * time.Minute
	}
	if cfg.SpeedKmh <= 0 {
		cfg.SpeedKmh = routing.DefaultSpeedKmh
	}
	return &OrderService{
		menu:     menu,
		orders:   orders,
		users:    users,
		coupons:  coupons,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// CreateOrder prices the request from the menu and stores a pending order
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, req models.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	restaurant, err := s.menu.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return nil, ErrRestaurantNotFound
	}
	if !restaurant.IsOpen {
		return nil, ErrRestaurantClosed
	}

	address, err := s.users.GetAddress(ctx, userID, req.AddressID)
	if err != nil {
		return nil, ErrAddressNotFound
	}

	// Duplicate lines are merged so each item is priced once
	var items []models.OrderItem
	index := make(map[int64]int)
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if i, exists := index[line.MenuItemID]; exists {
			items[i].Quantity += line.Quantity
			items[i].Total = items[i].UnitPrice.Times(items[i].Quantity)
			continue
		}

		item, err := s.menu.GetItem(ctx, req.RestaurantID, line.MenuItemID)
		if err != nil {
			return nil, ErrInvalidItem
		}
		if !item.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
		}
		unit := item.UnitPrice()
		index[line.MenuItemID] = len(items)
		items = append(items, models.OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			UnitPrice:  unit,
			Quantity:   line.Quantity,
			Total:      unit.Times(line.Quantity),
		})
	}

	subtotal := pricing.Subtotal(items)

	var applied *models.Coupon
	var couponCode *string
	if req.CouponCode != nil && strings.TrimSpace(*req.CouponCode) != "" {
		v, err := s.coupons.Redeem(ctx, *req.CouponCode, subtotal, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCoupon, err)
		}
		applied = &v.Coupon
		code := v.Coupon.Code
		couponCode = &code
	}
	breakdown := pricing.Compute(subtotal, applied, restaurant.DeliveryFee)

	now := s.now().UTC()
	origin := models.Coordinates{Latitude: restaurant.Latitude, Longitude: restaurant.Longitude}
	rec := repository.OrderRecord{
		Order: models.Order{
			OrderNumber:         orderNumber(),
			UserID:              userID,
			RestaurantID:        restaurant.ID,
			Items:               items,
			AddressID:           address.ID,
			Address:             address,
			PaymentMethod:       req.PaymentMethod,
			PaymentStatus:       models.OrderPaymentPending,
			SpecialInstructions: trimmedOrNil(req.SpecialInstructions),
			CouponCode:          couponCode,
			Subtotal:            breakdown.Subtotal,
			DeliveryFee:         breakdown.DeliveryFee,
			Discount:            breakdown.Discount,
			Total:               breakdown.Total,
			Status:              order.StatusPending,
			CreatedAt:           now,
		},
		Origin:          origin,
		StatusChangedAt: now,
	}
	eta := now.Add(s.cfg.PrepTime)
	if dest, ok := address.Coordinates(); ok {
		rec.Destination = &dest
		eta = eta.Add(s.travelTime(origin, dest))
	}
	rec.EstimatedDeliveryTime = &eta

	created, err := s.orders.CreateOrder(ctx, rec)
	if err != nil {
		if couponCode != nil {
			s.coupons.Release(*couponCode, userID)
		}
		return nil, err
	}

	s.logger.Info("order created",
		"order_id", created.ID,
		"user_id", userID,
		"items_count", len(items),
		"total", int64(created.Total),
		"payment_method", created.PaymentMethod,
	)
	s.notifier.Notify(ctx, userID, created.ID, "order",
		"Order received",
		fmt.Sprintf("Your order %s of %s has been received.", created.OrderNumber, money.Format(created.Total)))

	return &created.Order, nil
}

func (s *OrderService) travelTime(from, to models.Coordinates) time.Duration {
	minutes := routing.EstimateMinutes(routing.Haversine(from, to), s.cfg.SpeedKmh)
	return time.Duration(minutes) * time.Minute
}

// orderNumber generates a short human-readable order number using UUID
func orderNumber() string {
	return "CMD-" + strings.ToUpper(uuid.NewString()[:8])
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// ListOrders returns the user's orders, most recent first
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	recs, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, len(recs))
	for i, r := range recs {
		out[i] = r.Order
	}
	return out, nil
}

// owned loads an order and hides other users' orders behind not found
func (s *OrderService) owned(ctx context.Context, userID, id int64) (*repository.OrderRecord, error) {
	rec, err := s.orders.GetOrder(ctx, id)
	if err != nil || rec.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return rec, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, id int64) (*models.Order, error) {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &rec.Order, nil
}

// TrackOrder reports status, driver and a simulated driver position
func (s *OrderService) TrackOrder(ctx context.Context, userID, id int64) (*models.TrackingInfo, error) {
	rec, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	info := &models.TrackingInfo{
		OrderStatus:           rec.Status,
		Driver:                rec.Driver,
		DeliveryCoords:        rec.Destination,
		EstimatedDeliveryTime: rec.EstimatedDeliveryTime,
	}
	if rec.Driver == nil {
		return info, nil
	}

	var pos models.Coordinates
	switch rec.Status {
	case order.StatusPickedUp:
		pos = rec.Origin
	case order.StatusOnTheWay:
		pos = rec.Origin
		if rec.Destination != nil {
			travel := s.travelTime(rec.Origin, *rec.Destination)
			f := 1.0
			if travel > 0 {
				f = float64(s.now().Sub(rec.StatusChangedAt)) / float64(travel)
			}
			pos = routing.Interpolate(rec.Origin, *rec.Destination, f)
		}
	case order.StatusDelivered:
		pos = rec.Origin
		if rec.Destination != nil {
			pos = *rec.Destination
		}
	default:
		return info, nil
	}
	info.DriverLocation = &pos
	return info, nil
}

// CancelOrder cancels a pending or confirmed order and frees its coupon
func (s *OrderService) CancelOrder(ctx context.Context, userID, id int64, reason string) (*models.Order, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	rec, err := s.orders.UpdateOrder(ctx, id, func(r *repository.OrderRecord) error {
		if !order.CanCancel(r.Status) {
			return ErrCannotCancel
		}
		r.Status = order.StatusCancelled
		r.StatusChangedAt = s.now().UTC()
		r.CancellationReason = strings.TrimSpace(reason)
		if r.PaymentStatus == models.OrderPaymentPaid {
			r.PaymentStatus = models.OrderPaymentRefund
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rec.CouponCode != nil {
		s.coupons.Release(*rec.CouponCode, userID)
	}
	s.logger.Info("order cancelled", "order_id", id, "user_id", userID, "reason", rec.CancellationReason)
	s.notifier.Notify(ctx, userID, id, "order", "Order cancelled",
		fmt.Sprintf("Your order %s has been cancelled.", rec.OrderNumber))
	return &rec.Order, nil
}

// RateOrder stores a one-time rating on a delivered order
func (s *OrderService) RateOrder(ctx context.Context, userID, id int64, req models.RateOrderRequest) (*models.Order, error) {
	if !validRating(req.RestaurantRating) || !validRating(req.DriverRating) {
		return nil, ErrInvalidRating
	}
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	rec, err := s.orders.UpdateOrder(ctx, id, func(r *repository.OrderRecord) error {
		if r.Status != order.StatusDelivered {
			return ErrNotDelivered
		}
		if r.Rating != nil {
			return ErrAlreadyRated
		}
		r.Rating = &models.OrderRating{
			RestaurantRating: req.RestaurantRating,
			DriverRating:     req.DriverRating,
			Comment:          strings.TrimSpace(req.Comment),
			CreatedAt:        s.now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec.Order, nil
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

// AdvanceOrder moves an order one step along the lifecycle. Mobile money
// orders stay pending until paid. A driver is assigned on pickup.
func (s *OrderService) AdvanceOrder(ctx context.Context, id int64) (*models.Order, error) {
	var from models.OrderStatus
	rec, err := s.orders.UpdateOrder(ctx, id, func(r *repository.OrderRecord) error {
		from = r.Status
		next, err := nextStatus(r)
		if err != nil {
			return err
		}
		r.Status = next
		r.StatusChangedAt = s.now().UTC()
		switch next {
		case order.StatusPickedUp:
			d := sandboxDrivers[int(r.ID)%len(sandboxDrivers)]
			r.Driver = &d
		case order.StatusOnTheWay:
			if r.Destination != nil {
				eta := r.StatusChangedAt.Add(s.travelTime(r.Origin, *r.Destination))
				r.EstimatedDeliveryTime = &eta
			}
		case order.StatusDelivered:
			if r.PaymentMethod == models.PaymentCash {
				r.PaymentStatus = models.OrderPaymentPaid
			}
		}
		return nil
	})
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("order advanced", "order_id", id, "from", from, "to", rec.Status)
	s.notifier.Notify(ctx, rec.UserID, id, "order_status",
		"Order "+strings.ToLower(order.Label(rec.Status)),
		fmt.Sprintf("Your order %s is now %s.", rec.OrderNumber, strings.ToLower(order.Label(rec.Status))))
	return &rec.Order, nil
}

func nextStatus(r *repository.OrderRecord) (models.OrderStatus, error) {
	if order.IsTerminal(r.Status) {
		return "", ErrOrderFinished
	}
	if r.Status == order.StatusPending && r.PaymentMethod.IsMobileMoney() && r.PaymentStatus != models.OrderPaymentPaid {
		return "", ErrAwaitingPayment
	}
	i := order.StepIndex(r.Status)
	if i < 0 {
		return "", fmt.Errorf("unknown status %q", r.Status)
	}
	return order.Steps[i+1], nil
}

// MarkPaid records a completed payment and confirms a pending order
func (s *OrderService) MarkPaid(ctx context.Context, id int64) error {
	rec, err := s.orders.UpdateOrder(ctx, id, func(r *repository.OrderRecord) error {
		r.PaymentStatus = models.OrderPaymentPaid
		if r.Status == order.StatusPending {
			r.Status = order.StatusConfirmed
			r.StatusChangedAt = s.now().UTC()
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(ctx, rec.UserID, id, "payment", "Payment received",
		fmt.Sprintf("We received %s for order %s.", money.Format(rec.Total), rec.OrderNumber))
	return nil
}

// MarkPaymentFailed records a failed or cancelled payment attempt
func (s *OrderService) MarkPaymentFailed(ctx context.Context, id int64) error {
	_, err := s.orders.UpdateOrder(ctx, id, func(r *repository.OrderRecord) error {
		if r.PaymentStatus != models.OrderPaymentPaid {
			r.PaymentStatus = models.OrderPaymentFailed
		}
		return nil
	})
	return err
}
