package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentInProgress = errors.New("a payment is already in progress for this order")
)

// OrderRecord is a stored order with the server-only delivery details.
type OrderRecord struct {
	models.Order
	Origin          models.Coordinates
	Destination     *models.Coordinates
	Driver          *models.Driver
	StatusChangedAt time.Time
}

func (r *OrderRecord) clone() *OrderRecord {
	out := *r
	out.Items = append([]models.OrderItem(nil), r.Items...)
	if r.Address != nil {
		a := *r.Address
		out.Address = &a
	}
	if r.Rating != nil {
		rt := *r.Rating
		out.Rating = &rt
	}
	if r.Destination != nil {
		d := *r.Destination
		out.Destination = &d
	}
	if r.Driver != nil {
		d := *r.Driver
		out.Driver = &d
	}
	if r.EstimatedDeliveryTime != nil {
		t := *r.EstimatedDeliveryTime
		out.EstimatedDeliveryTime = &t
	}
	return &out
}

// OrderRepository stores orders and their payments.
type OrderRepository interface {
	CreateOrder(ctx context.Context, rec OrderRecord) (*OrderRecord, error)
	GetOrder(ctx context.Context, id int64) (*OrderRecord, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]*OrderRecord, error)
	ListOrdersByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]*OrderRecord, error)
	// UpdateOrder applies fn to the stored order atomically. An error from fn
	// aborts the update.
	UpdateOrder(ctx context.Context, id int64, fn func(*OrderRecord) error) (*OrderRecord, error)

	CreatePayment(ctx context.Context, p models.Payment) (*models.Payment, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	ListPendingPayments(ctx context.Context) ([]models.Payment, error)
	UpdatePayment(ctx context.Context, id int64, fn func(*models.Payment) error) (*models.Payment, error)
}

// InMemoryOrderRepository implements OrderRepository with in-memory storage
type InMemoryOrderRepository struct {
	mu          sync.RWMutex
	orders      map[int64]*OrderRecord
	payments    map[int64]*models.Payment
	nextOrder   int64
	nextPayment int64
}

// NewInMemoryOrderRepository creates an empty order repository
func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders:   make(map[int64]*OrderRecord),
		payments: make(map[int64]*models.Payment),
	}
}

func (r *InMemoryOrderRepository) CreateOrder(ctx context.Context, rec OrderRecord) (*OrderRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextOrder++
	rec.ID = r.nextOrder
	stored := rec.clone()
	r.orders[rec.ID] = stored
	return stored.clone(), nil
}

func (r *InMemoryOrderRepository) GetOrder(ctx context.Context, id int64) (*OrderRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.orders[id]
	if !exists {
		return nil, ErrOrderNotFound
	}
	return rec.clone(), nil
}

// ListOrdersByUser returns the user's orders, most recent first.
func (r *InMemoryOrderRepository) ListOrdersByUser(ctx context.Context, userID int64) ([]*OrderRecord, error) {
	r.mu.RLock()
	out := make([]*OrderRecord, 0)
	for _, rec := range r.orders {
		if rec.UserID == userID {
			out = append(out, rec.clone())
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryOrderRepository) ListOrdersByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]*OrderRecord, error) {
	want := make(map[models.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	r.mu.RLock()
	out := make([]*OrderRecord, 0)
	for _, rec := range r.orders {
		if want[rec.Status] {
			out = append(out, rec.clone())
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(recs []*OrderRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID > recs[j].ID
	})
}

func (r *InMemoryOrderRepository) UpdateOrder(ctx context.Context, id int64, fn func(*OrderRecord) error) (*OrderRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.orders[id]
	if !exists {
		return nil, ErrOrderNotFound
	}
	work := rec.clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	work.ID = id
	r.orders[id] = work
	return work.clone(), nil
}

// CreatePayment stores a new payment unless the order already has a pending one.
func (r *InMemoryOrderRepository) CreatePayment(ctx context.Context, p models.Payment) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.payments {
		if existing.OrderID == p.OrderID && existing.Status == models.PaymentPending {
			return nil, ErrPaymentInProgress
		}
	}
	r.nextPayment++
	p.ID = r.nextPayment
	stored := p
	r.payments[p.ID] = &stored
	return &p, nil
}

func (r *InMemoryOrderRepository) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.payments[id]
	if !exists {
		return nil, ErrPaymentNotFound
	}
	out := *p
	return &out, nil
}

func (r *InMemoryOrderRepository) ListPendingPayments(ctx context.Context) ([]models.Payment, error) {
	r.mu.RLock()
	out := make([]models.Payment, 0)
	for _, p := range r.payments {
		if p.Status == models.PaymentPending {
			out = append(out, *p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryOrderRepository) UpdatePayment(ctx context.Context, id int64, fn func(*models.Payment) error) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.payments[id]
	if !exists {
		return nil, ErrPaymentNotFound
	}
	work := *p
	if err := fn(&work); err != nil {
		return nil, err
	}
	work.ID = id
	r.payments[id] = &work
	out := work
	return &out, nil
}
