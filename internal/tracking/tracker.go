// Package tracking polls an order and its delivery status for the tracking
// view until the order settles.
package tracking

import (
	"context"
	"log/slog"
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/order"
	"github.com/chriskamgang/MyINSAM-Resto/internal/poller"
	"golang.org/x/sync/errgroup"
)

const DefaultInterval = 10 * time.Second

// Service is the part of the order service the tracker reads from.
type Service interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	TrackOrder(ctx context.Context, id int64) (*models.TrackingInfo, error)
}

// Snapshot is what the tracking view renders after each poll.
type Snapshot struct {
	Order  *models.Order
	Track  *models.TrackingInfo
	Status order.Status

	StepIndex     int
	ShowTimeline  bool
	CanCancel     bool
	CanTrackOnMap bool
	DriverVisible bool

	// Driver and DriverLocation are only set while DriverVisible.
	Driver         *models.Driver
	DriverLocation *models.Coordinates
}

type Tracker struct {
	svc      Service
	interval time.Duration
	logger   *slog.Logger
}

func NewTracker(svc Service, interval time.Duration, logger *slog.Logger) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{
		svc:      svc,
		interval: interval,
		logger:   logger,
	}
}

// Fetch reads the order and its tracking info concurrently and derives a
// snapshot.
func (t *Tracker) Fetch(ctx context.Context, orderID int64) (Snapshot, error) {
	var (
		o     *models.Order
		track *models.TrackingInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		o, err = t.svc.GetOrder(gctx, orderID)
		return err
	})
	g.Go(func() error {
		var err error
		track, err = t.svc.TrackOrder(gctx, orderID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if o == nil {
		return Snapshot{}, apperr.ErrEmptyResponse
	}

	return build(o, track), nil
}

func build(o *models.Order, track *models.TrackingInfo) Snapshot {
	status := o.Status
	if track != nil && track.OrderStatus != "" {
		status = track.OrderStatus
	}

	s := Snapshot{
		Order:         o,
		Track:         track,
		Status:        status,
		StepIndex:     order.StepIndex(status),
		ShowTimeline:  order.ShowTimeline(status),
		CanCancel:     order.CanCancel(status),
		CanTrackOnMap: order.CanTrackOnMap(status),
		DriverVisible: order.DriverVisible(status),
	}
	if s.DriverVisible && track != nil {
		s.Driver = track.Driver
		s.DriverLocation = track.DriverLocation
	}
	return s
}

// Start polls immediately and then every interval, handing each snapshot to
// onUpdate. Polling stops by itself once the order is delivered or
// cancelled; the caller owns the returned task and stops it when the view
// closes.
func (t *Tracker) Start(ctx context.Context, orderID int64, onUpdate func(Snapshot)) *poller.Task {
	logger := t.logger.With("order_id", orderID)
	var last order.Status

	return poller.Start(ctx, t.interval,
		func(ctx context.Context) (Snapshot, error) {
			return t.Fetch(ctx, orderID)
		},
		func(s Snapshot, err error) bool {
			if err != nil {
				logger.Warn("tracking poll failed", "error", err)
				return true
			}
			if last != "" {
				if terr := order.CheckTransition(last, s.Status); terr != nil {
					logger.Warn("unexpected status transition", "error", terr)
				}
			}
			if !order.Known(s.Status) {
				logger.Info("unrecognised order status", "status", s.Status)
			}
			last = s.Status

			onUpdate(s)
			return !order.IsTerminal(s.Status)
		},
		poller.WithImmediate(),
	)
}
