package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polkiloo/tgmarket/internal/domain/repository"
)

const (
	pgUniqueViolation = "23505"

	activeOrderConstraint = "orders_active_client_service"
)

// querier is satisfied by both the pool and a transaction. Begin on a
// transaction opens a savepoint.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pgxPool interface {
	querier
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// repos binds repository implementations to a pool or a transaction.
type repos struct {
	q querier
}

func (r repos) Users() repository.UserRepository {
	return &userRepository{q: r.q}
}

func (r repos) Services() repository.ServiceRepository {
	return &serviceRepository{q: r.q}
}

func (r repos) Orders() repository.OrderRepository {
	return &orderRepository{q: r.q}
}

func (r repos) Ledger() repository.LedgerRepository {
	return &ledgerRepository{q: r.q}
}

func (r repos) Proposals() repository.ProposalRepository {
	return &proposalRepository{q: r.q}
}

func (r repos) Reviews() repository.ReviewRepository {
	return &reviewRepository{q: r.q}
}

func (r repos) Notifications() repository.NotificationRepository {
	return &notificationRepository{q: r.q}
}

func (r repos) Chats() repository.ChatRepository {
	return &chatRepository{q: r.q}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return repos{q: s.pool}.Users()
}

func (s *Storage) Services() repository.ServiceRepository {
	return repos{q: s.pool}.Services()
}

func (s *Storage) Orders() repository.OrderRepository {
	return repos{q: s.pool}.Orders()
}

func (s *Storage) Ledger() repository.LedgerRepository {
	return repos{q: s.pool}.Ledger()
}

func (s *Storage) Proposals() repository.ProposalRepository {
	return repos{q: s.pool}.Proposals()
}

func (s *Storage) Reviews() repository.ReviewRepository {
	return repos{q: s.pool}.Reviews()
}

func (s *Storage) Notifications() repository.NotificationRepository {
	return repos{q: s.pool}.Notifications()
}

func (s *Storage) Chats() repository.ChatRepository {
	return repos{q: s.pool}.Chats()
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            telegram_chat_id BIGINT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS services (
            id TEXT PRIMARY KEY,
            provider_id BIGINT NOT NULL REFERENCES users(id),
            title TEXT NOT NULL,
            price BIGINT NOT NULL CHECK (price > 0),
            min_price BIGINT NOT NULL DEFAULT 0,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            service_id TEXT NOT NULL REFERENCES services(id),
            client_id BIGINT NOT NULL REFERENCES users(id),
            provider_id BIGINT NOT NULL REFERENCES users(id),
            price BIGINT NOT NULL CHECK (price > 0),
            status TEXT NOT NULL,
            deadline_at TIMESTAMPTZ,
            quiz_answers JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + activeOrderConstraint + ` ON orders(client_id, service_id)
            WHERE status IN ('pending', 'accepted', 'in_progress')`,
		`CREATE TABLE IF NOT EXISTS price_proposals (
            id TEXT PRIMARY KEY,
            order_id TEXT REFERENCES orders(id),
            service_id TEXT NOT NULL REFERENCES services(id),
            from_user_id BIGINT NOT NULL,
            to_user_id BIGINT NOT NULL,
            proposed_price BIGINT NOT NULL,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            resolved_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
            seq BIGSERIAL PRIMARY KEY,
            id TEXT UNIQUE NOT NULL,
            user_id BIGINT NOT NULL,
            kind TEXT NOT NULL,
            delta BIGINT NOT NULL,
            held_delta BIGINT NOT NULL,
            order_id TEXT,
            reference TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (order_id, kind)
        )`,
		`CREATE TABLE IF NOT EXISTS ledger_accounts (
            user_id BIGINT PRIMARY KEY,
            total BIGINT NOT NULL DEFAULT 0,
            held BIGINT NOT NULL DEFAULT 0,
            CHECK (held >= 0 AND total - held >= 0)
        )`,
		`CREATE TABLE IF NOT EXISTS reviews (
            id TEXT PRIMARY KEY,
            order_id TEXT UNIQUE NOT NULL REFERENCES orders(id),
            service_id TEXT NOT NULL,
            client_id BIGINT NOT NULL,
            provider_id BIGINT NOT NULL,
            rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
            comment TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id TEXT PRIMARY KEY,
            event TEXT NOT NULL,
            order_id TEXT,
            proposal_id TEXT,
            actor_id BIGINT NOT NULL,
            client_id BIGINT NOT NULL,
            provider_id BIGINT NOT NULL,
            price BIGINT NOT NULL,
            status TEXT NOT NULL DEFAULT '',
            state TEXT NOT NULL,
            attempts INT NOT NULL DEFAULT 0,
            push_sent BOOLEAN NOT NULL DEFAULT FALSE,
            next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            last_error TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            delivered_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS chats (
            id TEXT PRIMARY KEY,
            user_low BIGINT NOT NULL,
            user_high BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (user_low, user_high)
        )`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
            seq BIGSERIAL PRIMARY KEY,
            id TEXT UNIQUE NOT NULL,
            chat_id TEXT NOT NULL REFERENCES chats(id),
            sender_id BIGINT NOT NULL,
            text TEXT NOT NULL,
            meta JSONB NOT NULL,
            notification_id TEXT UNIQUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_client ON orders(client_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_provider ON orders(provider_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_user ON ledger_entries(user_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_due ON notifications(next_attempt_at) WHERE state = 'pending'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_telegram_chat ON users(telegram_chat_id) WHERE telegram_chat_id IS NOT NULL`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction runs fn against repositories bound to one transaction.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos repository.Factory) error) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, repos{q: tx})
	})
}

// inTx executes fn inside a transaction opened on q. On a transaction q it
// opens a savepoint instead.
func inTx(ctx context.Context, q querier, fn func(pgx.Tx) error) (err error) {
	tx, err := q.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

func isUniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr, true
	}
	return nil, false
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var (
	_ repository.Factory    = (*Storage)(nil)
	_ repository.Transactor = (*Storage)(nil)
	_ repository.Factory    = repos{}
)
