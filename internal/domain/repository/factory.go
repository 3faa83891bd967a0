package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Services() ServiceRepository
	Orders() OrderRepository
	Ledger() LedgerRepository
	Proposals() ProposalRepository
	Reviews() ReviewRepository
	Notifications() NotificationRepository
	Chats() ChatRepository
}

// Transactor runs fn against repositories sharing one transaction. Every
// write made through the factory commits together or not at all.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Factory) error) error
}
