package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/tgmarket/internal/config"
	"github.com/polkiloo/tgmarket/internal/notify"
	"github.com/polkiloo/tgmarket/internal/usecase"
	"github.com/polkiloo/tgmarket/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewMarketFacade,
		newAdmins,
		newWaker,
		newHTTPServer,
		newNotificationDispatcher,
	),
	fx.Invoke(registerLifecycle),
)

func newAdmins(cfg *config.Config) usecase.Admins {
	return usecase.NewAdmins(cfg.AdminIDs)
}

func newWaker(signal *notify.Signal) usecase.Waker {
	return signal
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = time.Minute
)

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}

type workerParams struct {
	fx.In

	Facade *MarketFacade
	Signal *notify.Signal
	Config *config.Config
	Logger *slog.Logger
}

func newNotificationDispatcher(p workerParams) *worker.NotificationDispatcher {
	return worker.NewNotificationDispatcher(
		p.Facade,
		p.Signal.C(),
		worker.DispatcherOptions{
			PollInterval: p.Config.NotifyPollInterval,
			BatchSize:    p.Config.NotifyBatchSize,
			Workers:      p.Config.WorkerPoolSize,
			MaxAttempts:  p.Config.NotifyMaxAttempts,
		},
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Dispatcher *worker.NotificationDispatcher
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting tgmarket",
				slog.String("addr", p.Server.Addr),
				slog.Int("notify_workers", p.Config.WorkerPoolSize),
			)
			// The start context expires once fx finishes starting.
			p.Dispatcher.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			// In-flight requests may still enqueue notifications, so the
			// dispatcher stops after the server, even when that failed.
			var serverErr error
			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr = fmt.Errorf("shutdown http server: %w", err)
			}
			p.Dispatcher.Stop()
			if serverErr != nil {
				p.Logger.Error("tgmarket stopped with error", slog.String("error", serverErr.Error()))
				return serverErr
			}
			p.Logger.Info("tgmarket stopped")
			return nil
		},
	})
}
