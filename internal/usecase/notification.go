package usecase

import (
	"context"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
	"github.com/polkiloo/tgmarket/internal/notify"
)

// notificationLease keeps a claimed row away from other dispatchers while it
// is being delivered.
const notificationLease = time.Minute

// Pusher delivers out-of-band notices to users.
type Pusher interface {
	Push(ctx context.Context, notice model.PushNotice) error
}

// NotificationUseCase delivers outbox records to the chat and push channels.
// It never touches order or ledger state.
type NotificationUseCase struct {
	notifications repository.NotificationRepository
	chats         repository.ChatRepository
	orders        repository.OrderRepository
	pusher        Pusher
	logger        *slog.Logger
}

// NewNotificationUseCase constructs NotificationUseCase.
func NewNotificationUseCase(
	notifications repository.NotificationRepository,
	chats repository.ChatRepository,
	orders repository.OrderRepository,
	pusher Pusher,
	logger *slog.Logger,
) *NotificationUseCase {
	return &NotificationUseCase{
		notifications: notifications,
		chats:         chats,
		orders:        orders,
		pusher:        pusher,
		logger:        logger,
	}
}

// Due claims up to limit notifications ready for delivery.
func (u *NotificationUseCase) Due(ctx context.Context, limit int) ([]model.Notification, error) {
	return u.notifications.ClaimDue(ctx, limit, notificationLease)
}

// Deliver sends n through both channels. Push is attempted only once per
// notification and its failures are only logged. The returned flag reports
// whether push has been attempted so far.
func (u *NotificationUseCase) Deliver(ctx context.Context, n model.Notification) (bool, error) {
	msg := notify.Compose(n)

	pushSent := n.PushSent
	if !pushSent {
		for _, notice := range msg.Push {
			if err := u.pusher.Push(ctx, notice); err != nil {
				u.logger.Warn("push notice failed",
					slog.String("notification", n.ID),
					slog.Int64("user", notice.UserID),
					slog.String("error", err.Error()),
				)
			}
		}
		pushSent = true
	}

	chatID, err := u.chats.EnsureChat(ctx, n.ClientID, n.ProviderID)
	if err != nil {
		return pushSent, err
	}
	err = u.chats.SendSystemMessage(ctx, &model.ChatMessage{
		ChatID:         chatID,
		SenderID:       n.ActorID,
		Text:           msg.Text,
		Meta:           msg.Meta,
		NotificationID: n.ID,
	})
	return pushSent, err
}

// Complete marks the notification delivered.
func (u *NotificationUseCase) Complete(ctx context.Context, id string, pushSent bool) error {
	return u.notifications.MarkDelivered(ctx, id, pushSent)
}

// Retry schedules another delivery attempt.
func (u *NotificationUseCase) Retry(ctx context.Context, id string, pushSent bool, next time.Time, reason string) error {
	return u.notifications.Reschedule(ctx, id, pushSent, next, reason)
}

// Fail dead-letters the notification.
func (u *NotificationUseCase) Fail(ctx context.Context, id string, pushSent bool, reason string) error {
	return u.notifications.MarkFailed(ctx, id, pushSent, reason)
}

// OrderMessages returns the system messages posted about the order.
func (u *NotificationUseCase) OrderMessages(ctx context.Context, orderID string, actor model.Actor) ([]model.ChatMessage, error) {
	order, err := u.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.RoleOf(actor.UserID) == model.RoleNone && !actor.Admin {
		return nil, domainErrors.ErrNotAuthorized
	}

	chatID, err := u.chats.EnsureChat(ctx, order.ClientID, order.ProviderID)
	if err != nil {
		return nil, err
	}
	messages, err := u.chats.Messages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	result := make([]model.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Meta.OrderID == order.ID {
			result = append(result, m)
		}
	}
	return result, nil
}
