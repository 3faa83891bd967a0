package repository

import (
	"context"

	"github.com/polkiloo/tgmarket/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Get(ctx context.Context, id string) (*model.Order, error)
	// Insert fails with ErrActiveOrderExists when the client already has an
	// active order for the service.
	Insert(ctx context.Context, order *model.Order) error
	// ConditionalUpdate moves the order to next only if its stored status is
	// still expected. A mismatch yields ErrConflict.
	ConditionalUpdate(ctx context.Context, id string, expected, next model.OrderStatus) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListCompleted(ctx context.Context, clientID int64, serviceID string) ([]model.Order, error)
}
