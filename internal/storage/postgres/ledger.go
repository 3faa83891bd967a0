package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type ledgerRepository struct {
	q querier
}

// Append runs in its own transaction, or a savepoint when r is bound to one,
// so a rejected entry leaves nothing behind.
func (r *ledgerRepository) Append(ctx context.Context, entry model.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		const ensureAccount = `INSERT INTO ledger_accounts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
		if _, err := tx.Exec(ctx, ensureAccount, entry.UserID); err != nil {
			return err
		}

		const lockAccount = `SELECT total, held FROM ledger_accounts WHERE user_id=$1 FOR UPDATE`
		current := model.Balance{UserID: entry.UserID}
		if err := tx.QueryRow(ctx, lockAccount, entry.UserID).Scan(&current.Total, &current.Held); err != nil {
			return err
		}
		const insertEntry = `INSERT INTO ledger_entries (id, user_id, kind, delta, held_delta, order_id, reference)
                             VALUES ($1, $2, $3, $4, $5, $6, $7)
                             ON CONFLICT (order_id, kind) DO NOTHING
                             RETURNING created_at`
		err := tx.QueryRow(ctx, insertEntry, entry.ID, entry.UserID, entry.Kind, entry.Delta, entry.HeldDelta, nullableString(entry.OrderID), entry.Reference).
			Scan(&entry.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrAlreadyExists
		}
		if err != nil {
			return err
		}

		next := current.Apply(entry)
		if !next.Valid() {
			return domainErrors.ErrInsufficientFunds
		}

		const updateAccount = `UPDATE ledger_accounts SET total=$2, held=$3 WHERE user_id=$1`
		_, err = tx.Exec(ctx, updateAccount, entry.UserID, next.Total, next.Held)
		return err
	})
}

func (r *ledgerRepository) Balance(ctx context.Context, userID int64) (model.Balance, error) {
	const query = `SELECT total, held FROM ledger_accounts WHERE user_id=$1`
	b := model.Balance{UserID: userID}
	err := r.q.QueryRow(ctx, query, userID).Scan(&b.Total, &b.Held)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return model.Balance{}, err
	}
	return b, nil
}

const entryColumns = `id, user_id, kind, delta, held_delta, COALESCE(order_id, ''), reference, created_at`

func (r *ledgerRepository) EntriesByOrder(ctx context.Context, orderID string) ([]model.LedgerEntry, error) {
	const query = `SELECT ` + entryColumns + ` FROM ledger_entries WHERE order_id=$1 ORDER BY seq`
	return r.list(ctx, query, orderID)
}

func (r *ledgerRepository) EntriesByUser(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	const query = `SELECT ` + entryColumns + ` FROM ledger_entries WHERE user_id=$1 ORDER BY seq`
	return r.list(ctx, query, userID)
}

func (r *ledgerRepository) list(ctx context.Context, query string, arg any) ([]model.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Delta, &e.HeldDelta, &e.OrderID, &e.Reference, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
