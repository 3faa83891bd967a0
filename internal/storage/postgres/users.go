package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type userRepository struct {
	q querier
}

const userColumns = `id, login, password_hash, COALESCE(telegram_chat_id, 0), created_at`

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, telegramChatID int64) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash, telegram_chat_id) VALUES ($1, $2, NULLIF($3, 0)) RETURNING id, created_at`
	var u model.User
	err := r.q.QueryRow(ctx, query, login, passwordHash, telegramChatID).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Login = login
	u.PasswordHash = passwordHash
	u.TelegramChatID = telegramChatID
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE login=$1`
	return r.get(ctx, query, login)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.get(ctx, query, id)
}

func (r *userRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE telegram_chat_id=$1`
	return r.get(ctx, query, chatID)
}

func (r *userRepository) SetTelegramChatID(ctx context.Context, userID, chatID int64) error {
	const query = `UPDATE users SET telegram_chat_id=NULLIF($2, 0) WHERE id=$1`
	tag, err := r.q.Exec(ctx, query, userID, chatID)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) get(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := r.q.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.TelegramChatID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
