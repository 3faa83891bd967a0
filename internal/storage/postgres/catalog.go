package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

// --- ServiceRepository implementation ---

type serviceRepository struct {
	q querier
}

const serviceColumns = `id, provider_id, title, price, min_price, active, created_at`

func (r *serviceRepository) Create(ctx context.Context, s *model.Service) error {
	const query = `INSERT INTO services (id, provider_id, title, price, min_price, active)
                   VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	err := r.q.QueryRow(ctx, query, s.ID, s.ProviderID, s.Title, s.Price, s.MinPrice, s.Active).Scan(&s.CreatedAt)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id string) (*model.Service, error) {
	const query = `SELECT ` + serviceColumns + ` FROM services WHERE id=$1`
	var s model.Service
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.ProviderID, &s.Title, &s.Price, &s.MinPrice, &s.Active, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepository) List(ctx context.Context) ([]model.Service, error) {
	const query = `SELECT ` + serviceColumns + ` FROM services ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.ProviderID, &s.Title, &s.Price, &s.MinPrice, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- ReviewRepository implementation ---

type reviewRepository struct {
	q querier
}

func (r *reviewRepository) Insert(ctx context.Context, review *model.Review) error {
	const query = `INSERT INTO reviews (id, order_id, service_id, client_id, provider_id, rating, comment)
                   VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	err := r.q.QueryRow(ctx, query, review.ID, review.OrderID, review.ServiceID, review.ClientID, review.ProviderID, review.Rating, review.Comment).
		Scan(&review.CreatedAt)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *reviewRepository) ReviewedOrderIDs(ctx context.Context, clientID int64, serviceID string) ([]string, error) {
	const query = `SELECT order_id FROM reviews WHERE client_id=$1 AND service_id=$2 ORDER BY order_id`
	rows, err := r.q.Query(ctx, query, clientID, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *reviewRepository) ListByService(ctx context.Context, serviceID string) ([]model.Review, error) {
	const query = `SELECT id, order_id, service_id, client_id, provider_id, rating, comment, created_at
                   FROM reviews WHERE service_id=$1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.OrderID, &rv.ServiceID, &rv.ClientID, &rv.ProviderID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
