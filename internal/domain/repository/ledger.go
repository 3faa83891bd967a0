package repository

import (
	"context"

	"github.com/polkiloo/tgmarket/internal/domain/model"
)

// LedgerRepository stores append-only entries and running balances.
type LedgerRepository interface {
	// Append records the entry and applies it to the running balance.
	// It fails with ErrAlreadyExists when an entry of the same kind exists for
	// the order, and with ErrInsufficientFunds when the balance would become
	// invalid. Nothing is written on failure.
	Append(ctx context.Context, entry model.LedgerEntry) error
	Balance(ctx context.Context, userID int64) (model.Balance, error)
	EntriesByOrder(ctx context.Context, orderID string) ([]model.LedgerEntry, error)
	EntriesByUser(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
}
