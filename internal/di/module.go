package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/tgmarket/internal/adapter/telegram"
	"github.com/polkiloo/tgmarket/internal/app"
	"github.com/polkiloo/tgmarket/internal/config"
	"github.com/polkiloo/tgmarket/internal/logger"
	"github.com/polkiloo/tgmarket/internal/notify"
	"github.com/polkiloo/tgmarket/internal/pkg/auth"
	"github.com/polkiloo/tgmarket/internal/server/http/router"
	"github.com/polkiloo/tgmarket/internal/storage/postgres"
	"github.com/polkiloo/tgmarket/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		telegram.Module,
		notify.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
