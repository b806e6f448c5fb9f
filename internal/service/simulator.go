package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/order"
	"github.com/chriskamgang/MyINSAM-Resto/internal/poller"
	"github.com/chriskamgang/MyINSAM-Resto/internal/repository"
)

// FailingPhoneSuffix makes the simulator fail a payment, so the failure
// path can be exercised from a real client.
const FailingPhoneSuffix = "0000"

// Simulator plays the restaurant, the driver and the mobile money operator:
// on every tick it settles pending payments and moves active orders one step.
type Simulator struct {
	orders   *OrderService
	payments *PaymentService
	repo     repository.OrderRepository
	logger   *slog.Logger
}

func NewSimulator(orders *OrderService, payments *PaymentService, repo repository.OrderRepository, logger *slog.Logger) *Simulator {
	return &Simulator{orders: orders, payments: payments, repo: repo, logger: logger}
}

// Start runs Step every tick until ctx ends or the task is stopped.
func (s *Simulator) Start(ctx context.Context, tick time.Duration) *poller.Task {
	s.logger.Info("sandbox simulator started", "tick", tick)
	return poller.Start(ctx, tick, s.Step, func(changed int, err error) bool {
		if err != nil {
			s.logger.Warn("simulator step failed", "error", err)
		} else if changed > 0 {
			s.logger.Debug("simulator step", "changed", changed)
		}
		return true
	})
}

// Step settles every pending payment, then advances every active order.
// It returns how many payments and orders changed.
func (s *Simulator) Step(ctx context.Context) (int, error) {
	changed := 0

	pending, err := s.payments.Pending(ctx)
	if err != nil {
		return changed, err
	}
	for _, p := range pending {
		status := models.PaymentCompleted
		if strings.HasSuffix(p.Phone, FailingPhoneSuffix) {
			status = models.PaymentFailed
		}
		if _, err := s.payments.Resolve(ctx, p.ID, status); err != nil {
			if errors.Is(err, ErrPaymentSettled) {
				continue
			}
			return changed, err
		}
		changed++
	}

	active := make([]models.OrderStatus, 0, len(order.Steps)-1)
	for _, st := range order.Steps {
		if !order.IsTerminal(st) {
			active = append(active, st)
		}
	}
	recs, err := s.repo.ListOrdersByStatus(ctx, active...)
	if err != nil {
		return changed, err
	}
	for _, rec := range recs {
		_, err := s.orders.AdvanceOrder(ctx, rec.ID)
		switch {
		case err == nil:
			changed++
		case errors.Is(err, ErrAwaitingPayment), errors.Is(err, ErrOrderFinished):
		default:
			return changed, err
		}
	}
	return changed, nil
}
