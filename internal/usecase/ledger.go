package usecase

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
)

// Ledger implements escrow operations over an append-only entry log.
// Bind it to a transaction-scoped repository to make its writes commit with
// the order status change.
type Ledger struct {
	entries repository.LedgerRepository
}

// NewLedger constructs Ledger.
func NewLedger(entries repository.LedgerRepository) *Ledger {
	return &Ledger{entries: entries}
}

// Hold earmarks amount of the user's available balance for the order.
func (l *Ledger) Hold(ctx context.Context, userID int64, orderID string, amount int64) error {
	if amount <= 0 {
		return domainErrors.ErrInvalidAmount
	}
	err := l.entries.Append(ctx, model.LedgerEntry{
		UserID:    userID,
		Kind:      model.EntryHold,
		HeldDelta: amount,
		OrderID:   orderID,
	})
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		return nil
	}
	return err
}

// Release returns the order escrow to the user. Replaying it is a no-op.
func (l *Ledger) Release(ctx context.Context, userID int64, orderID string, amount int64) error {
	done, err := l.closeable(ctx, orderID, model.EntryRelease, model.EntrySettle)
	if err != nil || done {
		return err
	}
	err = l.entries.Append(ctx, model.LedgerEntry{
		UserID:    userID,
		Kind:      model.EntryRelease,
		HeldDelta: -amount,
		OrderID:   orderID,
	})
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		return nil
	}
	return err
}

// Settle transfers the order escrow from the client to the provider's
// spendable balance. Replaying it is a no-op.
func (l *Ledger) Settle(ctx context.Context, fromUserID, toUserID int64, orderID string, amount int64) error {
	done, err := l.closeable(ctx, orderID, model.EntrySettle, model.EntryRelease)
	if err != nil || done {
		return err
	}
	err = l.entries.Append(ctx, model.LedgerEntry{
		UserID:    fromUserID,
		Kind:      model.EntrySettle,
		Delta:     -amount,
		HeldDelta: -amount,
		OrderID:   orderID,
	})
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return err
	}
	return l.entries.Append(ctx, model.LedgerEntry{
		UserID:  toUserID,
		Kind:    model.EntryPayout,
		Delta:   amount,
		OrderID: orderID,
	})
}

// closeable reports done=true when the escrow was already closed the same way.
func (l *Ledger) closeable(ctx context.Context, orderID string, kind, opposite model.EntryKind) (bool, error) {
	entries, err := l.entries.EntriesByOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	held := false
	for _, e := range entries {
		switch e.Kind {
		case kind:
			return true, nil
		case opposite:
			return false, fmt.Errorf("%w: order %s already has %s", domainErrors.ErrEscrowClosed, orderID, opposite)
		case model.EntryHold:
			held = true
		}
	}
	if !held {
		return false, fmt.Errorf("%w: order %s", domainErrors.ErrEscrowNotHeld, orderID)
	}
	return false, nil
}

// Deposit credits the user's spendable balance.
func (l *Ledger) Deposit(ctx context.Context, userID int64, amount int64, reference string) error {
	if amount <= 0 {
		return domainErrors.ErrInvalidAmount
	}
	return l.entries.Append(ctx, model.LedgerEntry{
		UserID:    userID,
		Kind:      model.EntryDeposit,
		Delta:     amount,
		Reference: reference,
	})
}

// Balance returns the running balance of the user.
func (l *Ledger) Balance(ctx context.Context, userID int64) (model.Balance, error) {
	return l.entries.Balance(ctx, userID)
}

// Entries returns the user's ledger history in append order.
func (l *Ledger) Entries(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return l.entries.EntriesByUser(ctx, userID)
}

// Reconcile rebuilds the balance from entries and compares it with the
// running total.
func (l *Ledger) Reconcile(ctx context.Context, userID int64) (model.Balance, error) {
	entries, err := l.entries.EntriesByUser(ctx, userID)
	if err != nil {
		return model.Balance{}, err
	}
	rebuilt := model.Balance{UserID: userID}
	for _, e := range entries {
		rebuilt = rebuilt.Apply(e)
	}
	stored, err := l.entries.Balance(ctx, userID)
	if err != nil {
		return model.Balance{}, err
	}
	if stored != rebuilt {
		return rebuilt, fmt.Errorf("%w: user %d stored %+v, rebuilt %+v", domainErrors.ErrLedgerDrift, userID, stored, rebuilt)
	}
	return rebuilt, nil
}
