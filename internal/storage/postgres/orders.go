package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type orderRepository struct {
	q querier
}

const orderColumns = `id, service_id, client_id, provider_id, price, status, deadline_at,
                   COALESCE(quiz_answers::text, ''), created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o    model.Order
		quiz string
	)
	if err := row.Scan(&o.ID, &o.ServiceID, &o.ClientID, &o.ProviderID, &o.Price, &o.Status, &o.DeadlineAt, &quiz, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if quiz != "" {
		o.QuizAnswers = json.RawMessage(quiz)
	}
	return &o, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Insert(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (id, service_id, client_id, provider_id, price, status, deadline_at, quiz_answers)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
                   RETURNING created_at, updated_at`
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	var quiz *string
	if len(order.QuizAnswers) > 0 {
		s := string(order.QuizAnswers)
		quiz = &s
	}
	err := r.q.QueryRow(ctx, query, order.ID, order.ServiceID, order.ClientID, order.ProviderID, order.Price, order.Status, order.DeadlineAt, quiz).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if pgErr, ok := isUniqueViolation(err); ok {
			if pgErr.ConstraintName == activeOrderConstraint {
				return domainErrors.ErrActiveOrderExists
			}
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) ConditionalUpdate(ctx context.Context, id string, expected, next model.OrderStatus) (*model.Order, error) {
	const query = `UPDATE orders SET status=$3, updated_at=NOW()
                   WHERE id=$1 AND status=$2
                   RETURNING ` + orderColumns
	order, err := scanOrder(r.q.QueryRow(ctx, query, id, expected, next))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domainErrors.ErrNotFound
	}
	return nil, domainErrors.ErrConflict
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + `
                   FROM orders WHERE client_id=$1 OR provider_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *orderRepository) ListCompleted(ctx context.Context, clientID int64, serviceID string) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + `
                   FROM orders WHERE client_id=$1 AND service_id=$2 AND status='completed' ORDER BY created_at`
	return r.list(ctx, query, clientID, serviceID)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
