package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/tgmarket/internal/domain/model"
)

const maxRetryDelay = 5 * time.Minute

// NotificationFacade exposes the subset of application functionality required by the worker.
type NotificationFacade interface {
	DueNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	DeliverNotification(ctx context.Context, n model.Notification) (bool, error)
	CompleteNotification(ctx context.Context, id string, pushSent bool) error
	RetryNotification(ctx context.Context, id string, pushSent bool, next time.Time, reason string) error
	FailNotification(ctx context.Context, id string, pushSent bool, reason string) error
}

// DispatcherOptions tunes the dispatcher pool.
type DispatcherOptions struct {
	PollInterval time.Duration
	BatchSize    int
	Workers      int
	MaxAttempts  int
}

// NotificationDispatcher drains the notification outbox with a pool of
// workers. It polls on a ticker and also whenever wake fires.
type NotificationDispatcher struct {
	facade       NotificationFacade
	wake         <-chan struct{}
	pollInterval time.Duration
	batchSize    int
	workers      int
	maxAttempts  int
	logger       *slog.Logger
	now          func() time.Time

	queueSize int
	wg        sync.WaitGroup
	cancel    context.CancelFunc
	mu        sync.Mutex
}

// NewNotificationDispatcher constructs the dispatcher worker pool.
func NewNotificationDispatcher(facade NotificationFacade, wake <-chan struct{}, opts DispatcherOptions, logger *slog.Logger) *NotificationDispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	return &NotificationDispatcher{
		facade:       facade,
		wake:         wake,
		pollInterval: opts.PollInterval,
		batchSize:    opts.BatchSize,
		workers:      opts.Workers,
		maxAttempts:  opts.MaxAttempts,
		logger:       logger,
		now:          time.Now,
		queueSize:    opts.BatchSize * opts.Workers,
	}
}

// Start launches background delivery. Each run gets its own job queue, so the
// dispatcher may be started again after Stop. Start on a running dispatcher
// is a no-op.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	jobs := make(chan model.Notification, d.queueSize)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx, jobs)
	}

	d.wg.Add(1)
	go d.dispatch(runCtx, jobs)
}

// Stop waits for all workers to finish.
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
}

func (d *NotificationDispatcher) dispatch(ctx context.Context, jobs chan<- model.Notification) {
	defer d.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-d.wake:
		}
		d.fetchAndDispatch(ctx, jobs)
	}
}

func (d *NotificationDispatcher) fetchAndDispatch(ctx context.Context, jobs chan<- model.Notification) {
	due, err := d.facade.DueNotifications(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("claim due notifications failed", slog.String("error", err.Error()))
		return
	}
	for _, n := range due {
		select {
		case <-ctx.Done():
			return
		case jobs <- n:
		}
	}
}

func (d *NotificationDispatcher) worker(ctx context.Context, jobs <-chan model.Notification) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-jobs:
			if !ok {
				return
			}
			d.handle(ctx, n)
		}
	}
}

func (d *NotificationDispatcher) handle(ctx context.Context, n model.Notification) {
	pushSent, err := d.facade.DeliverNotification(ctx, n)
	if err == nil {
		if err := d.facade.CompleteNotification(ctx, n.ID, pushSent); err != nil {
			d.logger.Error("mark notification delivered failed", slog.String("notification", n.ID), slog.String("error", err.Error()))
		}
		return
	}

	if n.Attempts >= d.maxAttempts {
		d.logger.Error("notification dead-lettered",
			slog.String("notification", n.ID),
			slog.String("event", string(n.Event)),
			slog.String("order", n.OrderID),
			slog.Int("attempts", n.Attempts),
			slog.String("error", err.Error()),
		)
		if err := d.facade.FailNotification(ctx, n.ID, pushSent, err.Error()); err != nil {
			d.logger.Error("mark notification failed failed", slog.String("notification", n.ID), slog.String("error", err.Error()))
		}
		return
	}

	delay := retryDelay(n.Attempts)
	d.logger.Warn("notification delivery failed, will retry",
		slog.String("notification", n.ID),
		slog.Int("attempts", n.Attempts),
		slog.Duration("retry_in", delay),
		slog.String("error", err.Error()),
	)
	if err := d.facade.RetryNotification(ctx, n.ID, pushSent, d.now().Add(delay), err.Error()); err != nil {
		d.logger.Error("reschedule notification failed", slog.String("notification", n.ID), slog.String("error", err.Error()))
	}
}

// retryDelay is 2^attempts seconds, capped at maxRetryDelay.
func retryDelay(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts >= 9 {
		return maxRetryDelay
	}
	delay := time.Duration(1<<attempts) * time.Second
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
