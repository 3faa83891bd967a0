package config

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module provides *Config and logs the effective settings once the graph is built.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(logSummary),
)

// logSummary never prints secrets, only whether they are set.
func logSummary(cfg *Config, logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.String("addr", cfg.RunAddress),
		slog.Bool("database", cfg.DatabaseURI != ""),
		slog.Bool("telegram", cfg.TelegramBotToken != ""),
		slog.Duration("session_ttl", cfg.SessionTTL),
		slog.Duration("init_data_max_age", cfg.InitDataMaxAge),
		slog.Duration("notify_poll_interval", cfg.NotifyPollInterval),
		slog.Int("workers", cfg.WorkerPoolSize),
		slog.Int("notify_batch_size", cfg.NotifyBatchSize),
		slog.Int("notify_max_attempts", cfg.NotifyMaxAttempts),
		slog.Int("admins", len(cfg.AdminIDs)),
		slog.String("log_level", cfg.LogLevel),
	)
}
