package repository

import (
	"context"

	"github.com/polkiloo/tgmarket/internal/domain/model"
)

// ProposalRepository persists price proposals.
type ProposalRepository interface {
	Insert(ctx context.Context, proposal *model.PriceProposal) error
	Get(ctx context.Context, id string) (*model.PriceProposal, error)
	// Resolve moves a pending proposal to status. A proposal that is no longer
	// pending yields ErrConflict.
	Resolve(ctx context.Context, id string, status model.ProposalStatus) (*model.PriceProposal, error)
	// Consume moves an accepted proposal to consumed. Any other status
	// yields ErrConflict.
	Consume(ctx context.Context, id string) (*model.PriceProposal, error)
}
