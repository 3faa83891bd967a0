package memory

import (
	"context"
	"sort"
	"time"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type notificationRepository struct{ v *view }

func (r *notificationRepository) Enqueue(_ context.Context, n *model.Notification) error {
	return r.v.do(func(d *dataset) error {
		if n.ID == "" {
			n.ID = newID()
		}
		now := r.v.now()
		n.State = model.NotificationPending
		n.CreatedAt = now
		if n.NextAttemptAt.IsZero() {
			n.NextAttemptAt = now
		}
		d.outbox[n.ID] = *n
		return nil
	})
}

func (r *notificationRepository) ClaimDue(_ context.Context, limit int, lease time.Duration) ([]model.Notification, error) {
	var claimed []model.Notification
	err := r.v.do(func(d *dataset) error {
		now := r.v.now()
		var due []model.Notification
		for _, n := range d.outbox {
			if n.State == model.NotificationPending && !n.NextAttemptAt.After(now) {
				due = append(due, n)
			}
		}
		sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
		if len(due) > limit {
			due = due[:limit]
		}
		for _, n := range due {
			n.Attempts++
			n.NextAttemptAt = now.Add(lease)
			d.outbox[n.ID] = n
			claimed = append(claimed, n)
		}
		return nil
	})
	return claimed, err
}

func (r *notificationRepository) update(id string, fn func(n *model.Notification)) error {
	return r.v.do(func(d *dataset) error {
		n, ok := d.outbox[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		fn(&n)
		d.outbox[id] = n
		return nil
	})
}

func (r *notificationRepository) MarkDelivered(_ context.Context, id string, pushSent bool) error {
	now := r.v.now()
	return r.update(id, func(n *model.Notification) {
		n.State = model.NotificationDelivered
		n.PushSent = pushSent
		n.DeliveredAt = &now
		n.LastError = ""
	})
}

func (r *notificationRepository) Reschedule(_ context.Context, id string, pushSent bool, next time.Time, reason string) error {
	return r.update(id, func(n *model.Notification) {
		n.PushSent = pushSent
		n.NextAttemptAt = next
		n.LastError = reason
	})
}

func (r *notificationRepository) MarkFailed(_ context.Context, id string, pushSent bool, reason string) error {
	return r.update(id, func(n *model.Notification) {
		n.State = model.NotificationFailed
		n.PushSent = pushSent
		n.LastError = reason
	})
}

// Outbox returns a snapshot of all notifications ordered by creation.
func (s *Store) Outbox() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Notification, 0, len(s.data.outbox))
	for _, n := range s.data.outbox {
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

type chatRepository struct{ v *view }

func pairKey(a, b int64) chatKey {
	if a > b {
		a, b = b, a
	}
	return chatKey{a, b}
}

func (r *chatRepository) EnsureChat(_ context.Context, userA, userB int64) (string, error) {
	var id string
	err := r.v.do(func(d *dataset) error {
		key := pairKey(userA, userB)
		if existing, ok := d.chats[key]; ok {
			id = existing
			return nil
		}
		id = newID()
		d.chats[key] = id
		return nil
	})
	return id, err
}

func (r *chatRepository) SendSystemMessage(_ context.Context, msg *model.ChatMessage) error {
	return r.v.do(func(d *dataset) error {
		if msg.NotificationID != "" {
			if _, dup := d.notifiedMsgs[msg.NotificationID]; dup {
				return nil
			}
			d.notifiedMsgs[msg.NotificationID] = struct{}{}
		}
		if msg.ID == "" {
			msg.ID = newID()
		}
		msg.CreatedAt = r.v.now()
		d.messages[msg.ChatID] = append(d.messages[msg.ChatID], *msg)
		return nil
	})
}

func (r *chatRepository) Messages(_ context.Context, chatID string) ([]model.ChatMessage, error) {
	var result []model.ChatMessage
	err := r.v.do(func(d *dataset) error {
		result = append(result, d.messages[chatID]...)
		return nil
	})
	return result, err
}
