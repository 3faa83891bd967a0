package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
	pkgAuth "github.com/polkiloo/tgmarket/internal/pkg/auth"
)

const maxLoginLength = 64

// Admins is the set of user IDs allowed to resolve disputes and top up balances.
type Admins map[int64]struct{}

// NewAdmins builds the admin set from configured IDs.
func NewAdmins(ids []int64) Admins {
	admins := make(Admins, len(ids))
	for _, id := range ids {
		admins[id] = struct{}{}
	}
	return admins
}

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
	admins Admins
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, admins Admins) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy, admins: admins}
}

// Register creates a new user with login/password and returns auth token.
// telegramChatID may be zero when the user has not linked the bot.
func (u *AuthUseCase) Register(ctx context.Context, login, password string, telegramChatID int64) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || len(login) > maxLoginLength || password == "" || strings.HasPrefix(login, telegramLoginPrefix) {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, login, hash, telegramChatID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// LinkTelegramChat points push notices of a password account at chatID.
// Zero unlinks. Accounts created by Mini App login are bound to their
// Telegram identity and cannot be relinked.
func (u *AuthUseCase) LinkTelegramChat(ctx context.Context, userID, chatID int64) error {
	if chatID < 0 {
		return domainErrors.ErrInvalidInput
	}
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if strings.HasPrefix(usr.Login, telegramLoginPrefix) {
		return domainErrors.ErrNotAuthorized
	}
	if usr.TelegramChatID == chatID {
		return nil
	}
	return u.users.SetTelegramChatID(ctx, userID, chatID)
}

// ParseToken extracts user ID from provided token.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

// Actor resolves the permissions of an authenticated user.
func (u *AuthUseCase) Actor(userID int64) model.Actor {
	_, admin := u.admins[userID]
	return model.Actor{UserID: userID, Admin: admin}
}
