package repository

import (
	"context"

	"github.com/polkiloo/tgmarket/internal/domain/model"
)

// ServiceRepository persists marketplace listings.
type ServiceRepository interface {
	Create(ctx context.Context, service *model.Service) error
	Get(ctx context.Context, id string) (*model.Service, error)
	List(ctx context.Context) ([]model.Service, error)
}
