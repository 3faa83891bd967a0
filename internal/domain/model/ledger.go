package model

import "time"

// EntryKind classifies an append-only ledger entry.
type EntryKind string

const (
	EntryDeposit EntryKind = "deposit"
	EntryHold    EntryKind = "hold"
	EntryRelease EntryKind = "release"
	EntrySettle  EntryKind = "settle"
	EntryPayout  EntryKind = "payout"
)

// LedgerEntry is an immutable balance mutation. Delta changes the total
// balance, HeldDelta changes the escrowed part of it.
type LedgerEntry struct {
	ID        string
	UserID    int64
	Kind      EntryKind
	Delta     int64
	HeldDelta int64
	OrderID   string
	Reference string
	CreatedAt time.Time
}

// Balance is the running total of a user's ledger entries.
type Balance struct {
	UserID int64
	Total  int64
	Held   int64
}

// Available is the spendable part of the balance.
func (b Balance) Available() int64 {
	return b.Total - b.Held
}

// Apply returns the balance after the entry is appended.
func (b Balance) Apply(e LedgerEntry) Balance {
	b.Total += e.Delta
	b.Held += e.HeldDelta
	return b
}

// Valid reports whether the balance satisfies ledger invariants.
func (b Balance) Valid() bool {
	return b.Held >= 0 && b.Available() >= 0
}
