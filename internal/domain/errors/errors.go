package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidInput       = errors.New("invalid input")

	// Order lifecycle.
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrConflict          = errors.New("conflicting update, reload and retry")
	ErrActiveOrderExists = errors.New("active order already exists for service")
	ErrPriceMismatch     = errors.New("price does not match listing or agreed proposal")

	// Ledger.
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrEscrowClosed      = errors.New("escrow already closed")
	ErrEscrowNotHeld     = errors.New("escrow not held")
	ErrLedgerDrift       = errors.New("running totals disagree with ledger entries")

	// Price negotiation.
	ErrOutOfBounds   = errors.New("proposed price out of bounds")
	ErrInvalidBound  = errors.New("invalid price bound")
	ErrStaleProposal = errors.New("proposal is no longer actionable")
)
