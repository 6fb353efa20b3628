// Package scheduler runs periodic maintenance of pauses, subscriptions and
// login limiters.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/example/supplysetu/internal/metrics"
	"github.com/example/supplysetu/internal/middleware"
	"github.com/example/supplysetu/internal/models"
	"github.com/example/supplysetu/internal/services"
	"github.com/example/supplysetu/internal/store"
)

// Job names used in logs and metrics.
const (
	JobExpirePauses      = "expire_pauses"
	JobRollSubscriptions = "roll_subscriptions"
	JobPruneLimiters     = "prune_limiters"
)

const limiterIdle = time.Hour

// Scheduler owns the cron runner and the jobs it triggers.
type Scheduler struct {
	cron     *cron.Cron
	store    *store.Store
	notifier *services.Notifier
	limiter  *middleware.PhoneRateLimiter
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

// New creates a Scheduler. limiter may be nil.
func New(s *store.Store, notifier *services.Notifier, limiter *middleware.PhoneRateLimiter, m *metrics.Metrics, log *zap.Logger) *Scheduler {
	log = log.Named("scheduler")
	cl := cronLogger{log: log}
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		store:    s,
		notifier: notifier,
		limiter:  limiter,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Start registers every job under spec and starts the runner.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunAll); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("spec", spec))
	return nil
}

// Stop halts the runner; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunAll runs every job once.
func (s *Scheduler) RunAll() {
	ctx := context.Background()

	n, err := s.ExpirePauses(ctx)
	s.record(JobExpirePauses, n, err)

	n, err = s.RollSubscriptions(ctx)
	s.record(JobRollSubscriptions, n, err)

	if s.limiter != nil {
		s.record(JobPruneLimiters, s.limiter.Prune(limiterIdle), nil)
	}
}

func (s *Scheduler) record(job string, affected int, err error) {
	if s.metrics != nil {
		s.metrics.JobRun(job, err)
	}
	if err != nil {
		s.log.Error("job failed", zap.String("job", job), zap.Error(err))
		return
	}
	s.log.Debug("job finished", zap.String("job", job), zap.Int("affected", affected))
}

// ExpirePauses deactivates active pauses once their last day is over.
func (s *Scheduler) ExpirePauses(ctx context.Context) (int, error) {
	now := s.now()
	var expired []models.DeliveryPause

	err := s.store.Atomic(func() error {
		active, err := s.store.DeliveryPauses.Find(ctx, "is_active", true)
		if err != nil {
			return err
		}
		for _, p := range active {
			if !p.Ended(now) {
				continue
			}
			updated, err := s.store.DeliveryPauses.Update(ctx, p.ID, func(p *models.DeliveryPause) error {
				p.IsActive = false
				return nil
			})
			if err != nil {
				return err
			}
			expired = append(expired, *updated)
		}
		return nil
	})

	for i := range expired {
		s.notifier.PauseExpired(ctx, &expired[i])
	}
	return len(expired), err
}

// RollSubscriptions places a pending order for every active subscription
// whose next delivery is due, unless the vendor has a pause covering that
// date, and moves next_delivery forward by one period.
func (s *Scheduler) RollSubscriptions(ctx context.Context) (int, error) {
	now := s.now()
	var placed []models.Order

	err := s.store.Atomic(func() error {
		subs, err := s.store.Subscriptions.Find(ctx, "is_active", true)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			if sub.NextDelivery == nil || sub.NextDelivery.After(now) {
				continue
			}
			due := *sub.NextDelivery

			paused, err := s.vendorPaused(ctx, sub.VendorID, due)
			if err != nil {
				return err
			}
			if !paused {
				order, err := s.placeOrder(ctx, sub, due)
				if err != nil && !errors.Is(err, errNothingToOrder) {
					s.log.Warn("subscription order skipped", zap.String("subscription_id", sub.ID), zap.Error(err))
				}
				if order != nil {
					placed = append(placed, *order)
				}
			}

			next := models.NextDeliveryAfter(due, sub.DeliveryFrequency)
			for !next.After(now) {
				next = models.NextDeliveryAfter(next, sub.DeliveryFrequency)
			}
			if _, err := s.store.Subscriptions.Update(ctx, sub.ID, func(sub *models.Subscription) error {
				sub.NextDelivery = &next
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})

	for i := range placed {
		if s.metrics != nil {
			s.metrics.OrderCreated()
		}
		s.notifier.OrderPlaced(ctx, &placed[i])
	}
	return len(placed), err
}

var errNothingToOrder = errors.New("subscription has no items")

func (s *Scheduler) vendorPaused(ctx context.Context, vendorID string, day time.Time) (bool, error) {
	pauses, err := s.store.DeliveryPauses.Find(ctx, "vendor_id", vendorID)
	if err != nil {
		return false, err
	}
	for _, p := range pauses {
		if p.Covers(day) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Scheduler) placeOrder(ctx context.Context, sub models.Subscription, due time.Time) (*models.Order, error) {
	source := sub.CustomItems
	if len(source) == 0 && sub.BundleID != nil {
		bundle, err := s.store.Bundles.Get(ctx, *sub.BundleID)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", *sub.BundleID, err)
		}
		source = bundle.Items
	}
	if len(source) == 0 {
		return nil, errNothingToOrder
	}

	reqs := make([]services.ItemRequest, 0, len(source))
	for _, item := range source {
		reqs = append(reqs, services.ItemRequest{ProductID: item.ProductID, Quantity: item.Quantity, Unit: item.Unit})
	}
	items, err := services.PriceOrderItems(ctx, s.store, sub.SupplierID, reqs)
	if err != nil {
		return nil, err
	}

	return s.store.Orders.Create(ctx, &models.Order{
		VendorID:     sub.VendorID,
		SupplierID:   sub.SupplierID,
		Items:        items,
		TotalAmount:  models.OrderTotal(items),
		Status:       models.OrderPending,
		DeliveryDate: &due,
		DeliveryType: sub.DeliveryFrequency,
	})
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
