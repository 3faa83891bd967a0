package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
	pkgAuth "github.com/polkiloo/tgmarket/internal/pkg/auth"
)

// InitDataVerifier checks Mini App launch data.
type InitDataVerifier interface {
	Verify(raw string) (pkgAuth.InitData, error)
}

// TelegramLoginUseCase signs users in from inside the Mini App. The first
// login creates a password-less account linked to the Telegram user, so
// push notices reach the same chat.
type TelegramLoginUseCase struct {
	users    repository.UserRepository
	verifier InitDataVerifier
	tokens   pkgAuth.Strategy
	logger   *slog.Logger
}

// NewTelegramLoginUseCase constructs TelegramLoginUseCase.
func NewTelegramLoginUseCase(users repository.UserRepository, verifier InitDataVerifier, strategy pkgAuth.Strategy, logger *slog.Logger) *TelegramLoginUseCase {
	return &TelegramLoginUseCase{users: users, verifier: verifier, tokens: strategy, logger: logger}
}

// Login verifies initData and returns the linked user with a session token.
func (u *TelegramLoginUseCase) Login(ctx context.Context, initData string) (*model.User, string, error) {
	data, err := u.verifier.Verify(initData)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domainErrors.ErrInvalidCredentials, err)
	}

	usr, err := u.findOrCreate(ctx, data.User)
	if err != nil {
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

func (u *TelegramLoginUseCase) findOrCreate(ctx context.Context, tg pkgAuth.TelegramUser) (*model.User, error) {
	usr, err := u.users.GetByTelegramChatID(ctx, tg.ID)
	if err == nil {
		return usr, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}

	usr, err = u.users.Create(ctx, telegramLogin(tg), "", tg.ID)
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		// A concurrent first login won the insert.
		return u.users.GetByTelegramChatID(ctx, tg.ID)
	}
	if err != nil {
		return nil, err
	}
	u.logger.Info("telegram user linked",
		slog.Int64("user_id", usr.ID),
		slog.Int64("telegram_id", tg.ID),
	)
	return usr, nil
}

// telegramLoginPrefix is reserved: Register refuses logins that start with it.
const telegramLoginPrefix = "tg:"

func telegramLogin(tg pkgAuth.TelegramUser) string {
	return telegramLoginPrefix + strconv.FormatInt(tg.ID, 10)
}
