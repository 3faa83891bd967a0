package repository

import (
	"context"

	"github.com/polkiloo/tgmarket/internal/domain/model"
)

// UserRepository describes persistence operations for users. Logins and
// non-zero Telegram chat ids are unique.
type UserRepository interface {
	Create(ctx context.Context, login, passwordHash string, telegramChatID int64) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByTelegramChatID finds the account linked to a Telegram user.
	GetByTelegramChatID(ctx context.Context, chatID int64) (*model.User, error)
	// SetTelegramChatID links or, with zero, unlinks the user's bot chat.
	SetTelegramChatID(ctx context.Context, userID, chatID int64) error
}
