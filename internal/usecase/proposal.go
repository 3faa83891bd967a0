package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
)

// ProposeInput describes a counter-offer. Exactly one of ServiceID and
// OrderID is expected; OrderID wins when both are set.
type ProposeInput struct {
	FromUserID int64
	ToUserID   int64
	ServiceID  string
	OrderID    string
	Price      int64
	Bound      model.PriceBound
}

// ProposalService negotiates prices between a client and a provider.
type ProposalService struct {
	tx     repository.Transactor
	repos  repository.Factory
	waker  Waker
	logger *slog.Logger
}

// NewProposalService constructs ProposalService.
func NewProposalService(tx repository.Transactor, repos repository.Factory, waker Waker, logger *slog.Logger) *ProposalService {
	return &ProposalService{tx: tx, repos: repos, waker: waker, logger: logger}
}

// Propose validates and stores a pending proposal.
func (s *ProposalService) Propose(ctx context.Context, in ProposeInput) (*model.PriceProposal, error) {
	if !in.Bound.Known() {
		return nil, fmt.Errorf("%w: %q", domainErrors.ErrInvalidBound, in.Bound.Kind)
	}
	if in.Price <= 0 || !in.Bound.Allows(in.Price) {
		return nil, fmt.Errorf("%w: %d against %s %d", domainErrors.ErrOutOfBounds, in.Price, in.Bound.Kind, in.Bound.Value)
	}
	if in.FromUserID == in.ToUserID {
		return nil, domainErrors.ErrNotAuthorized
	}

	proposal := &model.PriceProposal{
		ID:            uuid.NewString(),
		FromUserID:    in.FromUserID,
		ToUserID:      in.ToUserID,
		ProposedPrice: in.Price,
		Status:        model.ProposalStatusPending,
	}

	var (
		clientID, providerID int64
		service              *model.Service
		err                  error
	)
	if in.OrderID != "" {
		order, err := s.repos.Orders().Get(ctx, in.OrderID)
		if err != nil {
			return nil, err
		}
		if order.RoleOf(in.FromUserID) == model.RoleNone || order.Counterparty(in.FromUserID) != in.ToUserID {
			return nil, domainErrors.ErrNotAuthorized
		}
		if order.Status != model.OrderStatusPending {
			return nil, fmt.Errorf("%w: order %s is %s", domainErrors.ErrStaleProposal, order.ID, order.Status)
		}
		if service, err = s.repos.Services().Get(ctx, order.ServiceID); err != nil {
			return nil, err
		}
		orderID := order.ID
		proposal.OrderID = &orderID
		clientID, providerID = order.ClientID, order.ProviderID
	} else {
		if service, err = s.repos.Services().Get(ctx, in.ServiceID); err != nil {
			return nil, err
		}
		if (in.FromUserID == service.ProviderID) == (in.ToUserID == service.ProviderID) {
			return nil, domainErrors.ErrNotAuthorized
		}
		clientID, providerID = in.FromUserID, service.ProviderID
		if clientID == providerID {
			clientID = in.ToUserID
		}
	}
	proposal.ServiceID = service.ID
	if err := checkListingFloor(in.Bound, in.Price, service); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		if err := repos.Proposals().Insert(ctx, proposal); err != nil {
			return err
		}
		return repos.Notifications().Enqueue(ctx, proposalNotification(proposal, model.EventProposalCreated, in.FromUserID, clientID, providerID))
	})
	if err != nil {
		return nil, err
	}

	s.waker.Wake()
	s.logger.Info("price proposed",
		slog.String("proposal", proposal.ID),
		slog.String("service", proposal.ServiceID),
		slog.Int64("from", proposal.FromUserID),
		slog.Int64("to", proposal.ToUserID),
		slog.Int64("price", proposal.ProposedPrice),
	)
	return proposal, nil
}

// Accept agrees to the proposed price. No funds move.
func (s *ProposalService) Accept(ctx context.Context, id string, by int64) (*model.PriceProposal, error) {
	return s.resolve(ctx, id, by, model.ProposalStatusAccepted)
}

// Reject declines the proposal.
func (s *ProposalService) Reject(ctx context.Context, id string, by int64) (*model.PriceProposal, error) {
	return s.resolve(ctx, id, by, model.ProposalStatusRejected)
}

// Get returns the proposal if the user is one of its parties.
func (s *ProposalService) Get(ctx context.Context, id string, userID int64) (*model.PriceProposal, error) {
	p, err := s.repos.Proposals().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.FromUserID != userID && p.ToUserID != userID {
		return nil, domainErrors.ErrNotAuthorized
	}
	return p, nil
}

func (s *ProposalService) resolve(ctx context.Context, id string, by int64, status model.ProposalStatus) (*model.PriceProposal, error) {
	p, err := s.repos.Proposals().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ToUserID != by {
		return nil, domainErrors.ErrNotAuthorized
	}
	if p.Status != model.ProposalStatusPending {
		return nil, fmt.Errorf("%w: proposal %s is %s", domainErrors.ErrStaleProposal, p.ID, p.Status)
	}

	service, err := s.repos.Services().Get(ctx, p.ServiceID)
	if err != nil {
		return nil, err
	}
	clientID, providerID := p.FromUserID, service.ProviderID
	if clientID == providerID {
		clientID = p.ToUserID
	}

	event := model.EventProposalRejected
	if status == model.ProposalStatusAccepted {
		event = model.EventProposalAccepted
	}

	var resolved *model.PriceProposal
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		if p.OrderScoped() && status == model.ProposalStatusAccepted {
			order, err := repos.Orders().Get(ctx, *p.OrderID)
			if err != nil {
				return err
			}
			if order.Status != model.OrderStatusPending {
				return fmt.Errorf("%w: order %s is %s", domainErrors.ErrStaleProposal, order.ID, order.Status)
			}
		}

		var err error
		resolved, err = repos.Proposals().Resolve(ctx, p.ID, status)
		if errors.Is(err, domainErrors.ErrConflict) {
			return fmt.Errorf("%w: proposal %s was resolved concurrently", domainErrors.ErrStaleProposal, p.ID)
		}
		if err != nil {
			return err
		}
		return repos.Notifications().Enqueue(ctx, proposalNotification(resolved, event, by, clientID, providerID))
	})
	if err != nil {
		return nil, err
	}

	s.waker.Wake()
	s.logger.Info("proposal resolved",
		slog.String("proposal", resolved.ID),
		slog.String("status", string(resolved.Status)),
		slog.Int64("by", by),
	)
	return resolved, nil
}

// checkListingFloor keeps every proposal at or above the listing's minimum
// price. A caller bound may narrow that range but never widen it.
func checkListingFloor(bound model.PriceBound, price int64, service *model.Service) error {
	if bound.Kind == model.BoundMin && bound.Value < service.MinPrice {
		return fmt.Errorf("%w: min %d is below the listing minimum %d", domainErrors.ErrInvalidBound, bound.Value, service.MinPrice)
	}
	floor := model.PriceBound{Kind: model.BoundMin, Value: service.MinPrice}
	if !floor.Allows(price) {
		return fmt.Errorf("%w: %d is below the listing minimum %d", domainErrors.ErrOutOfBounds, price, service.MinPrice)
	}
	return nil
}

func sameParties(a, b, client, provider int64) bool {
	return (a == client && b == provider) || (a == provider && b == client)
}

func proposalNotification(p *model.PriceProposal, event model.Event, actorID, clientID, providerID int64) *model.Notification {
	n := &model.Notification{
		Event:      event,
		ProposalID: p.ID,
		ActorID:    actorID,
		ClientID:   clientID,
		ProviderID: providerID,
		Price:      p.ProposedPrice,
	}
	if p.OrderScoped() {
		n.OrderID = *p.OrderID
	}
	return n
}
