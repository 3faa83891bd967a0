package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
)

// BotNotifier pushes notices to the Telegram chat linked to a user.
// A nil client disables push.
type BotNotifier struct {
	client Client
	users  repository.UserRepository
	logger *slog.Logger
}

// NewBotNotifier builds a notifier on top of the bot client.
func NewBotNotifier(client Client, users repository.UserRepository, logger *slog.Logger) *BotNotifier {
	return &BotNotifier{client: client, users: users, logger: logger}
}

// Push sends the notice. Users without a linked chat are skipped.
func (n *BotNotifier) Push(ctx context.Context, notice model.PushNotice) error {
	if n.client == nil {
		return nil
	}
	user, err := n.users.GetByID(ctx, notice.UserID)
	if err != nil {
		return fmt.Errorf("lookup push recipient: %w", err)
	}
	if user.TelegramChatID == 0 {
		n.logger.Debug("push skipped, no telegram chat", slog.Int64("user_id", notice.UserID))
		return nil
	}
	return n.client.SendMessage(ctx, user.TelegramChatID, notice.Text)
}
