package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type proposalRepository struct {
	q querier
}

const proposalColumns = `id, COALESCE(order_id, ''), service_id, from_user_id, to_user_id,
                   proposed_price, status, created_at, resolved_at`

func scanProposal(row pgx.Row) (*model.PriceProposal, error) {
	var (
		p       model.PriceProposal
		orderID string
	)
	if err := row.Scan(&p.ID, &orderID, &p.ServiceID, &p.FromUserID, &p.ToUserID, &p.ProposedPrice, &p.Status, &p.CreatedAt, &p.ResolvedAt); err != nil {
		return nil, err
	}
	if orderID != "" {
		p.OrderID = &orderID
	}
	return &p, nil
}

func (r *proposalRepository) Insert(ctx context.Context, p *model.PriceProposal) error {
	const query = `INSERT INTO price_proposals (id, order_id, service_id, from_user_id, to_user_id, proposed_price, status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   RETURNING created_at`
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var orderID *string
	if p.OrderScoped() {
		orderID = p.OrderID
	}
	err := r.q.QueryRow(ctx, query, p.ID, orderID, p.ServiceID, p.FromUserID, p.ToUserID, p.ProposedPrice, p.Status).
		Scan(&p.CreatedAt)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *proposalRepository) Get(ctx context.Context, id string) (*model.PriceProposal, error) {
	const query = `SELECT ` + proposalColumns + ` FROM price_proposals WHERE id=$1`
	p, err := scanProposal(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *proposalRepository) Resolve(ctx context.Context, id string, status model.ProposalStatus) (*model.PriceProposal, error) {
	const query = `UPDATE price_proposals SET status=$2, resolved_at=NOW()
                   WHERE id=$1 AND status='pending'
                   RETURNING ` + proposalColumns
	return r.swap(ctx, query, id, status)
}

func (r *proposalRepository) Consume(ctx context.Context, id string) (*model.PriceProposal, error) {
	const query = `UPDATE price_proposals SET status=$2
                   WHERE id=$1 AND status='accepted'
                   RETURNING ` + proposalColumns
	return r.swap(ctx, query, id, model.ProposalStatusConsumed)
}

// swap runs a conditional status update and tells a missing proposal apart
// from one in another status.
func (r *proposalRepository) swap(ctx context.Context, query, id string, status model.ProposalStatus) (*model.PriceProposal, error) {
	p, err := scanProposal(r.q.QueryRow(ctx, query, id, status))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM price_proposals WHERE id=$1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domainErrors.ErrNotFound
	}
	return nil, domainErrors.ErrConflict
}
