package memory

import (
	"context"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type proposalRepository struct{ v *view }

func (r *proposalRepository) Insert(_ context.Context, p *model.PriceProposal) error {
	return r.v.do(func(d *dataset) error {
		if p.ID == "" {
			p.ID = newID()
		}
		if _, exists := d.proposals[p.ID]; exists {
			return domainErrors.ErrAlreadyExists
		}
		p.CreatedAt = r.v.now()
		d.proposals[p.ID] = *p
		return nil
	})
}

func (r *proposalRepository) Get(_ context.Context, id string) (*model.PriceProposal, error) {
	var out model.PriceProposal
	err := r.v.do(func(d *dataset) error {
		p, ok := d.proposals[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *proposalRepository) Resolve(_ context.Context, id string, status model.ProposalStatus) (*model.PriceProposal, error) {
	return r.swap(id, model.ProposalStatusPending, status, true)
}

func (r *proposalRepository) Consume(_ context.Context, id string) (*model.PriceProposal, error) {
	return r.swap(id, model.ProposalStatusAccepted, model.ProposalStatusConsumed, false)
}

func (r *proposalRepository) swap(id string, from, to model.ProposalStatus, stamp bool) (*model.PriceProposal, error) {
	var out model.PriceProposal
	err := r.v.do(func(d *dataset) error {
		p, ok := d.proposals[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		if p.Status != from {
			return domainErrors.ErrConflict
		}
		if stamp {
			resolvedAt := r.v.now()
			p.ResolvedAt = &resolvedAt
		}
		p.Status = to
		d.proposals[id] = p
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
