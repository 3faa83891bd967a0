package test

import (
	"context"
	"sync"
	"time"

	"github.com/polkiloo/tgmarket/internal/domain/model"
)

// RetryCall records a RetryNotification invocation.
type RetryCall struct {
	ID       string
	PushSent bool
	Next     time.Time
	Reason   string
}

// FailCall records a FailNotification invocation.
type FailCall struct {
	ID       string
	PushSent bool
	Reason   string
}

// NotificationFacadeStub mimics the dispatcher's view of the application.
// Batches are handed out once each, in order.
type NotificationFacadeStub struct {
	Batches   [][]model.Notification
	DueFn     func(context.Context, int) ([]model.Notification, error)
	DeliverFn func(context.Context, model.Notification) (bool, error)

	mu        sync.Mutex
	dueCalls  int
	Limits    []int
	Completed []string
	Retries   []RetryCall
	Failures  []FailCall
	Done      chan string
}

// DueNotifications returns the next configured batch.
func (s *NotificationFacadeStub) DueNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	s.mu.Lock()
	s.Limits = append(s.Limits, limit)
	call := s.dueCalls
	s.dueCalls++
	s.mu.Unlock()

	if s.DueFn != nil {
		return s.DueFn(ctx, limit)
	}
	if call < len(s.Batches) {
		return s.Batches[call], nil
	}
	return nil, nil
}

// DeliverNotification succeeds with push sent unless overridden.
func (s *NotificationFacadeStub) DeliverNotification(ctx context.Context, n model.Notification) (bool, error) {
	if s.DeliverFn != nil {
		return s.DeliverFn(ctx, n)
	}
	return true, nil
}

// CompleteNotification records the delivered notification.
func (s *NotificationFacadeStub) CompleteNotification(ctx context.Context, id string, pushSent bool) error {
	s.mu.Lock()
	s.Completed = append(s.Completed, id)
	s.mu.Unlock()
	s.signal(id)
	return nil
}

// RetryNotification records the reschedule request.
func (s *NotificationFacadeStub) RetryNotification(ctx context.Context, id string, pushSent bool, next time.Time, reason string) error {
	s.mu.Lock()
	s.Retries = append(s.Retries, RetryCall{ID: id, PushSent: pushSent, Next: next, Reason: reason})
	s.mu.Unlock()
	s.signal(id)
	return nil
}

// FailNotification records the dead letter.
func (s *NotificationFacadeStub) FailNotification(ctx context.Context, id string, pushSent bool, reason string) error {
	s.mu.Lock()
	s.Failures = append(s.Failures, FailCall{ID: id, PushSent: pushSent, Reason: reason})
	s.mu.Unlock()
	s.signal(id)
	return nil
}

// DueCalls reports how many times DueNotifications ran.
func (s *NotificationFacadeStub) DueCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dueCalls
}

// Lock exposes internal mutex for external synchronization.
func (s *NotificationFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *NotificationFacadeStub) Unlock() { s.mu.Unlock() }

func (s *NotificationFacadeStub) signal(id string) {
	if s.Done == nil {
		return
	}
	select {
	case s.Done <- id:
	default:
	}
}
