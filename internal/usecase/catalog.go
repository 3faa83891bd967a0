package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
)

// CreateServiceInput describes a new listing.
type CreateServiceInput struct {
	ProviderID int64
	Title      string
	Price      int64
	MinPrice   int64
}

// CatalogUseCase manages service listings.
type CatalogUseCase struct {
	services repository.ServiceRepository
	logger   *slog.Logger
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(services repository.ServiceRepository, logger *slog.Logger) *CatalogUseCase {
	return &CatalogUseCase{services: services, logger: logger}
}

// Create publishes a listing owned by the provider.
func (u *CatalogUseCase) Create(ctx context.Context, in CreateServiceInput) (*model.Service, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domainErrors.ErrInvalidInput)
	}
	if in.Price <= 0 || in.MinPrice < 0 || in.MinPrice > in.Price {
		return nil, domainErrors.ErrInvalidAmount
	}

	service := &model.Service{
		ProviderID: in.ProviderID,
		Title:      title,
		Price:      in.Price,
		MinPrice:   in.MinPrice,
		Active:     true,
	}
	if err := u.services.Create(ctx, service); err != nil {
		return nil, err
	}

	u.logger.Info("service listed", slog.String("service", service.ID), slog.Int64("provider", service.ProviderID))
	return service, nil
}

// Get returns one listing.
func (u *CatalogUseCase) Get(ctx context.Context, id string) (*model.Service, error) {
	return u.services.Get(ctx, id)
}

// List returns all listings.
func (u *CatalogUseCase) List(ctx context.Context) ([]model.Service, error) {
	return u.services.List(ctx)
}
