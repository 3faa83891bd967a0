package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/tgmarket/internal/config"
)

// Module provides password hashing, session tokens and Mini App launch
// data verification.
var Module = fx.Provide(
	newPasswordHasher,
	newTokenStrategy,
	newInitDataVerifier,
)

func newPasswordHasher() PasswordHasher {
	return NewBcryptHasher(0)
}

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewHMACStrategy(p.Config.JWTSecret, Options{TTL: p.Config.SessionTTL})
}

func newInitDataVerifier(p strategyParams) *InitDataVerifier {
	return NewInitDataVerifier(p.Config.TelegramBotToken, p.Config.InitDataMaxAge)
}
