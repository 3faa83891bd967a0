package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/tgmarket/internal/app"
	"github.com/polkiloo/tgmarket/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(
	Setup,
	func(f *app.MarketFacade) handlers.MarketFacade { return f },
)
