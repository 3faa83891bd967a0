package memory

import (
	"context"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type ledgerRepository struct{ v *view }

func (r *ledgerRepository) Append(_ context.Context, entry model.LedgerEntry) error {
	return r.v.do(func(d *dataset) error {
		if entry.OrderID != "" {
			for _, e := range d.entries {
				if e.OrderID == entry.OrderID && e.Kind == entry.Kind {
					return domainErrors.ErrAlreadyExists
				}
			}
		}
		balance := d.balances[entry.UserID]
		balance.UserID = entry.UserID
		next := balance.Apply(entry)
		if !next.Valid() {
			return domainErrors.ErrInsufficientFunds
		}
		if entry.ID == "" {
			entry.ID = newID()
		}
		entry.CreatedAt = r.v.now()
		d.entries = append(d.entries, entry)
		d.balances[entry.UserID] = next
		return nil
	})
}

func (r *ledgerRepository) Balance(_ context.Context, userID int64) (model.Balance, error) {
	var out model.Balance
	err := r.v.do(func(d *dataset) error {
		out = d.balances[userID]
		out.UserID = userID
		return nil
	})
	return out, err
}

func (r *ledgerRepository) EntriesByOrder(_ context.Context, orderID string) ([]model.LedgerEntry, error) {
	var result []model.LedgerEntry
	err := r.v.do(func(d *dataset) error {
		for _, e := range d.entries {
			if e.OrderID == orderID {
				result = append(result, e)
			}
		}
		return nil
	})
	return result, err
}

func (r *ledgerRepository) EntriesByUser(_ context.Context, userID int64) ([]model.LedgerEntry, error) {
	var result []model.LedgerEntry
	err := r.v.do(func(d *dataset) error {
		for _, e := range d.entries {
			if e.UserID == userID {
				result = append(result, e)
			}
		}
		return nil
	})
	return result, err
}
