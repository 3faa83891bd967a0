package telegram

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/tgmarket/internal/config"
	"github.com/polkiloo/tgmarket/internal/usecase"
)

// Module exposes the bot push channel to fx graph.
var Module = fx.Provide(
	newClient,
	NewBotNotifier,
	func(n *BotNotifier) usecase.Pusher { return n },
)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	if p.Config.TelegramBotToken == "" {
		p.Logger.Info("telegram bot token not set, push disabled")
		return nil, nil
	}
	return NewHTTPClient(p.Config.TelegramAPIURL, p.Config.TelegramBotToken, p.Logger)
}
