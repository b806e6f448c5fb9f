// Package cart implements the client-side shopping cart: line items, a single
// optional coupon, and totals derived on every read.
package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
	"github.com/chriskamgang/MyINSAM-Resto/internal/pricing"
)

var (
	ErrInvalidQuantity = apperr.Validation("quantity must be at least 1")
	ErrEmptyCouponCode = apperr.Validation("Please enter a coupon code")
)

// CouponValidator validates a code against the current subtotal. Rejections
// are returned unchanged to the caller of ApplyCoupon.
type CouponValidator interface {
	ValidateCoupon(ctx context.Context, code string, subtotal money.Amount, restaurantID int64) (*models.CouponValidation, error)
}

// Item is what gets added to the cart.
type Item struct {
	ID             int64
	Name           string
	UnitPrice      money.Amount
	EffectivePrice *money.Amount
}

// FromMenuItem converts a menu entry into a cart item.
func FromMenuItem(m models.MenuItem) Item {
	it := Item{ID: m.ID, Name: m.Name, UnitPrice: m.Price}
	if m.EffectivePrice != nil {
		p := *m.EffectivePrice
		it.EffectivePrice = &p
	}
	return it
}

// Line is one distinct item and its quantity.
type Line struct {
	Item
	Quantity int
}

// Price is the effective price when set, the unit price otherwise.
func (l Line) Price() money.Amount {
	if l.EffectivePrice != nil {
		return *l.EffectivePrice
	}
	return l.UnitPrice
}

// Total is Price × Quantity.
func (l Line) Total() money.Amount {
	return l.Price().Times(l.Quantity)
}

func (l Line) LinePrice() money.Amount { return l.Price() }
func (l Line) LineQuantity() int       { return l.Quantity }

// Config carries the per-restaurant settings the cart needs.
type Config struct {
	RestaurantID int64
	DeliveryFee  money.Amount
}

// Cart is safe for concurrent use. Every derived amount is computed from the
// lines and coupon at read time.
type Cart struct {
	cfg       Config
	validator CouponValidator

	mu     sync.Mutex
	lines  []Line
	coupon *models.Coupon
}

// New creates an empty cart.
func New(cfg Config, validator CouponValidator) *Cart {
	return &Cart{
		cfg:       cfg,
		validator: validator,
	}
}

// AddItem adds quantity units of item, merging with an existing line.
func (c *Cart) AddItem(item Item, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(item.ID); i >= 0 {
		c.lines[i].Quantity += quantity
		return nil
	}
	c.lines = append(c.lines, Line{Item: copyItem(item), Quantity: quantity})
	return nil
}

// RemoveItem takes one unit off a line, deleting it when it was the last.
// Unknown ids are ignored.
func (c *Cart) RemoveItem(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
		return
	}
	c.deleteLocked(i)
}

// DeleteItem removes a line whatever its quantity. Unknown ids are ignored.
func (c *Cart) DeleteItem(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(id); i >= 0 {
		c.deleteLocked(i)
	}
}

// Clear empties the cart and drops the coupon in one step.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.coupon = nil
}

// ApplyCoupon validates code against the current subtotal and attaches the
// result, replacing any previous coupon. On failure the cart is untouched and
// the validator's error is returned as is.
//
// The lock is not held during validation: a cart change that lands while the
// request is in flight does not trigger revalidation.
func (c *Cart) ApplyCoupon(ctx context.Context, code string) (*models.CouponValidation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCouponCode
	}

	c.mu.Lock()
	subtotal := pricing.Subtotal(c.lines)
	c.mu.Unlock()

	res, err := c.validator.ValidateCoupon(ctx, code, subtotal, c.cfg.RestaurantID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperr.ErrEmptyResponse
	}

	coupon := res.Coupon
	coupon.DiscountAmount = res.DiscountAmount
	if coupon.Code == "" {
		coupon.Code = code
	}

	c.mu.Lock()
	c.coupon = &coupon
	c.mu.Unlock()

	return res, nil
}

// RemoveCoupon detaches the coupon, if any.
func (c *Cart) RemoveCoupon() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.coupon = nil
}

// Snapshot is a consistent view of the cart and its derived totals.
type Snapshot struct {
	Lines  []Line
	Coupon *models.Coupon
	pricing.Breakdown
	ItemCount int
}

// IsEmpty reports whether the snapshot has no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Snapshot returns copies of the current state and totals.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Breakdown: pricing.Compute(pricing.Subtotal(c.lines), c.coupon, c.cfg.DeliveryFee),
	}
	if len(c.lines) > 0 {
		s.Lines = make([]Line, len(c.lines))
		for i, l := range c.lines {
			s.Lines[i] = Line{Item: copyItem(l.Item), Quantity: l.Quantity}
			s.ItemCount += l.Quantity
		}
	}
	if c.coupon != nil {
		cp := *c.coupon
		s.Coupon = &cp
	}
	return s
}

// Quantity returns how many units of id are in the cart.
func (c *Cart) Quantity(id int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(id); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// OrderItems lists the lines in create-order form.
func (c *Cart) OrderItems() []models.OrderItemRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]models.OrderItemRequest, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, models.OrderItemRequest{MenuItemID: l.ID, Quantity: l.Quantity})
	}
	return items
}

func (c *Cart) indexLocked(id int64) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) deleteLocked(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	if len(c.lines) == 0 {
		c.lines = nil
	}
}

func copyItem(it Item) Item {
	if it.EffectivePrice != nil {
		p := *it.EffectivePrice
		it.EffectivePrice = &p
	}
	return it
}
