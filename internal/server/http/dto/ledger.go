package dto

import "time"

// BalanceResponse is the credit balance of the user.
type BalanceResponse struct {
	Total     int64 `json:"total"`
	Held      int64 `json:"held"`
	Available int64 `json:"available"`
}

// ReconcileResponse is the balance rebuilt from ledger entries. Consistent
// is false when the stored running totals disagree.
type ReconcileResponse struct {
	UserID     int64 `json:"user_id"`
	Total      int64 `json:"total"`
	Held       int64 `json:"held"`
	Available  int64 `json:"available"`
	Consistent bool  `json:"consistent"`
}

// LedgerEntryResponse is one immutable balance mutation.
type LedgerEntryResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Delta     int64     `json:"delta"`
	HeldDelta int64     `json:"held_delta"`
	OrderID   string    `json:"order_id,omitempty"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DepositRequest tops up a user's credits.
type DepositRequest struct {
	UserID    int64  `json:"user_id"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}
