package repository

import (
	"context"
	"time"

	"github.com/polkiloo/tgmarket/internal/domain/model"
)

// NotificationRepository is the transactional outbox of pending notices.
type NotificationRepository interface {
	Enqueue(ctx context.Context, n *model.Notification) error
	// ClaimDue returns pending notifications whose next attempt is due and
	// leases them until lease elapses so concurrent dispatchers skip them.
	ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]model.Notification, error)
	MarkDelivered(ctx context.Context, id string, pushSent bool) error
	Reschedule(ctx context.Context, id string, pushSent bool, next time.Time, reason string) error
	MarkFailed(ctx context.Context, id string, pushSent bool, reason string) error
}

// ChatRepository is the chat collaborator receiving system messages.
type ChatRepository interface {
	EnsureChat(ctx context.Context, userA, userB int64) (string, error)
	// SendSystemMessage is idempotent per notification ID.
	SendSystemMessage(ctx context.Context, msg *model.ChatMessage) error
	Messages(ctx context.Context, chatID string) ([]model.ChatMessage, error)
}
