package test

import (
	"context"
	"errors"

	"github.com/polkiloo/tgmarket/internal/domain/model"
	pkgAuth "github.com/polkiloo/tgmarket/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(int64) (string, error)
	ParseFn func(string) (int64, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(userID int64) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(userID)
	}
	return "token", nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// TokenParserStub implements middleware token parsing contract.
type TokenParserStub struct {
	ID      int64
	Err     error
	Admins  []int64
	ParseFn func(string) (int64, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return 0, s.Err
	}
	return s.ID, nil
}

// Actor marks the user as admin when listed in Admins.
func (s TokenParserStub) Actor(userID int64) model.Actor {
	return actorFor(userID, s.Admins)
}

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string, int64) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	TelegramFn     func(context.Context, string) (string, error)
	LinkChatFn     func(context.Context, int64, int64) error
	ParseFn        func(string) (int64, error)
	Admins         []int64
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, login, password string, telegramChatID int64) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password, telegramChatID)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// TelegramLogin returns token for valid launch data scenarios.
func (s AuthFacadeStub) TelegramLogin(ctx context.Context, initData string) (string, error) {
	if s.TelegramFn != nil {
		return s.TelegramFn(ctx, initData)
	}
	return "token", nil
}

// LinkTelegramChat delegates to LinkChatFn when set.
func (s AuthFacadeStub) LinkTelegramChat(ctx context.Context, userID, chatID int64) error {
	if s.LinkChatFn != nil {
		return s.LinkChatFn(ctx, userID, chatID)
	}
	return nil
}

// ParseToken returns stored identifier for authenticated user.
func (s AuthFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// Actor marks the user as admin when listed in Admins.
func (s AuthFacadeStub) Actor(userID int64) model.Actor {
	return actorFor(userID, s.Admins)
}

func actorFor(userID int64, admins []int64) model.Actor {
	for _, id := range admins {
		if id == userID {
			return model.Actor{UserID: userID, Admin: true}
		}
	}
	return model.Actor{UserID: userID}
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
