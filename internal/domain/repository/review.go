package repository

import (
	"context"

	"github.com/polkiloo/tgmarket/internal/domain/model"
)

// ReviewRepository persists reviews, at most one per order.
type ReviewRepository interface {
	Insert(ctx context.Context, review *model.Review) error
	ReviewedOrderIDs(ctx context.Context, clientID int64, serviceID string) ([]string, error)
	ListByService(ctx context.Context, serviceID string) ([]model.Review, error)
}
