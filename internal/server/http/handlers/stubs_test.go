package handlers

import (
	"context"

	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/usecase"
)

type catalogStub struct {
	createFn func(context.Context, usecase.CreateServiceInput) (*model.Service, error)
	getFn    func(context.Context, string) (*model.Service, error)
	listFn   func(context.Context) ([]model.Service, error)
}

func (s catalogStub) CreateService(ctx context.Context, in usecase.CreateServiceInput) (*model.Service, error) {
	if s.createFn != nil {
		return s.createFn(ctx, in)
	}
	return &model.Service{ID: "svc", ProviderID: in.ProviderID, Title: in.Title, Price: in.Price, MinPrice: in.MinPrice, Active: true}, nil
}

func (s catalogStub) Service(ctx context.Context, id string) (*model.Service, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &model.Service{ID: id, Active: true}, nil
}

func (s catalogStub) Services(ctx context.Context) ([]model.Service, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return []model.Service{{ID: "svc"}}, nil
}

type orderStub struct {
	createFn     func(context.Context, usecase.CreateOrderInput) (*model.Order, error)
	getFn        func(context.Context, string, model.Actor) (*model.Order, error)
	listFn       func(context.Context, int64) ([]model.Order, error)
	transitionFn func(context.Context, string, model.Actor, model.Action, usecase.TransitionPayload) (*model.Order, error)
	messagesFn   func(context.Context, string, model.Actor) ([]model.ChatMessage, error)
}

func (s orderStub) CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*model.Order, error) {
	if s.createFn != nil {
		return s.createFn(ctx, in)
	}
	return &model.Order{ID: "o1", ServiceID: in.ServiceID, ClientID: in.ClientID, Status: model.OrderStatusPending}, nil
}

func (s orderStub) Order(ctx context.Context, id string, actor model.Actor) (*model.Order, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id, actor)
	}
	return &model.Order{ID: id, Status: model.OrderStatusPending}, nil
}

func (s orderStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID)
	}
	return nil, nil
}

func (s orderStub) TransitionOrder(ctx context.Context, id string, actor model.Actor, action model.Action, payload usecase.TransitionPayload) (*model.Order, error) {
	if s.transitionFn != nil {
		return s.transitionFn(ctx, id, actor, action, payload)
	}
	return &model.Order{ID: id, Status: model.OrderStatusAccepted}, nil
}

func (s orderStub) OrderMessages(ctx context.Context, id string, actor model.Actor) ([]model.ChatMessage, error) {
	if s.messagesFn != nil {
		return s.messagesFn(ctx, id, actor)
	}
	return nil, nil
}

type proposalStub struct {
	proposeFn func(context.Context, usecase.ProposeInput) (*model.PriceProposal, error)
	getFn     func(context.Context, string, int64) (*model.PriceProposal, error)
	acceptFn  func(context.Context, string, int64) (*model.PriceProposal, error)
	rejectFn  func(context.Context, string, int64) (*model.PriceProposal, error)
}

func (s proposalStub) Propose(ctx context.Context, in usecase.ProposeInput) (*model.PriceProposal, error) {
	if s.proposeFn != nil {
		return s.proposeFn(ctx, in)
	}
	return &model.PriceProposal{ID: "p1", ServiceID: in.ServiceID, FromUserID: in.FromUserID, ToUserID: in.ToUserID, ProposedPrice: in.Price, Status: model.ProposalStatusPending}, nil
}

func (s proposalStub) Proposal(ctx context.Context, id string, userID int64) (*model.PriceProposal, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id, userID)
	}
	return &model.PriceProposal{ID: id, Status: model.ProposalStatusPending}, nil
}

func (s proposalStub) AcceptProposal(ctx context.Context, id string, userID int64) (*model.PriceProposal, error) {
	if s.acceptFn != nil {
		return s.acceptFn(ctx, id, userID)
	}
	return &model.PriceProposal{ID: id, Status: model.ProposalStatusAccepted}, nil
}

func (s proposalStub) RejectProposal(ctx context.Context, id string, userID int64) (*model.PriceProposal, error) {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, id, userID)
	}
	return &model.PriceProposal{ID: id, Status: model.ProposalStatusRejected}, nil
}

type reviewStub struct {
	leaveFn       func(context.Context, usecase.LeaveReviewInput) (*model.Review, error)
	listFn        func(context.Context, string) ([]model.Review, error)
	eligibilityFn func(context.Context, int64, string) ([]string, error)
}

func (s reviewStub) LeaveReview(ctx context.Context, in usecase.LeaveReviewInput) (*model.Review, error) {
	if s.leaveFn != nil {
		return s.leaveFn(ctx, in)
	}
	return &model.Review{ID: "r1", OrderID: in.OrderID, ClientID: in.ClientID, Rating: in.Rating, Comment: in.Comment}, nil
}

func (s reviewStub) ServiceReviews(ctx context.Context, serviceID string) ([]model.Review, error) {
	if s.listFn != nil {
		return s.listFn(ctx, serviceID)
	}
	return nil, nil
}

func (s reviewStub) ReviewEligibility(ctx context.Context, clientID int64, serviceID string) ([]string, error) {
	if s.eligibilityFn != nil {
		return s.eligibilityFn(ctx, clientID, serviceID)
	}
	return nil, nil
}

type ledgerStub struct {
	balanceFn   func(context.Context, int64) (model.Balance, error)
	entriesFn   func(context.Context, int64) ([]model.LedgerEntry, error)
	depositFn   func(context.Context, model.Actor, int64, int64, string) error
	reconcileFn func(context.Context, model.Actor, int64) (model.Balance, bool, error)
}

func (s ledgerStub) Balance(ctx context.Context, userID int64) (model.Balance, error) {
	if s.balanceFn != nil {
		return s.balanceFn(ctx, userID)
	}
	return model.Balance{UserID: userID}, nil
}

func (s ledgerStub) LedgerEntries(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	if s.entriesFn != nil {
		return s.entriesFn(ctx, userID)
	}
	return nil, nil
}

func (s ledgerStub) Deposit(ctx context.Context, actor model.Actor, userID, amount int64, reference string) error {
	if s.depositFn != nil {
		return s.depositFn(ctx, actor, userID, amount, reference)
	}
	return nil
}

func (s ledgerStub) Reconcile(ctx context.Context, actor model.Actor, userID int64) (model.Balance, bool, error) {
	if s.reconcileFn != nil {
		return s.reconcileFn(ctx, actor, userID)
	}
	return model.Balance{UserID: userID}, true, nil
}

var (
	_ CatalogFacade  = catalogStub{}
	_ OrderFacade    = orderStub{}
	_ ProposalFacade = proposalStub{}
	_ ReviewFacade   = reviewStub{}
	_ LedgerFacade   = ledgerStub{}
)
