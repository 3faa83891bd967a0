package handlers

import (
	"context"

	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string, telegramChatID int64) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	TelegramLogin(ctx context.Context, initData string) (string, error)
	LinkTelegramChat(ctx context.Context, userID, chatID int64) error
	ParseToken(token string) (int64, error)
	Actor(userID int64) model.Actor
}

// CatalogFacade manages service listings.
type CatalogFacade interface {
	CreateService(ctx context.Context, in usecase.CreateServiceInput) (*model.Service, error)
	Service(ctx context.Context, id string) (*model.Service, error)
	Services(ctx context.Context) ([]model.Service, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*model.Order, error)
	Order(ctx context.Context, id string, actor model.Actor) (*model.Order, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	TransitionOrder(ctx context.Context, id string, actor model.Actor, action model.Action, payload usecase.TransitionPayload) (*model.Order, error)
	OrderMessages(ctx context.Context, id string, actor model.Actor) ([]model.ChatMessage, error)
}

// ProposalFacade negotiates prices.
type ProposalFacade interface {
	Propose(ctx context.Context, in usecase.ProposeInput) (*model.PriceProposal, error)
	Proposal(ctx context.Context, id string, userID int64) (*model.PriceProposal, error)
	AcceptProposal(ctx context.Context, id string, userID int64) (*model.PriceProposal, error)
	RejectProposal(ctx context.Context, id string, userID int64) (*model.PriceProposal, error)
}

// ReviewFacade stores reviews and answers eligibility questions.
type ReviewFacade interface {
	LeaveReview(ctx context.Context, in usecase.LeaveReviewInput) (*model.Review, error)
	ServiceReviews(ctx context.Context, serviceID string) ([]model.Review, error)
	ReviewEligibility(ctx context.Context, clientID int64, serviceID string) ([]string, error)
}

// LedgerFacade provides balance related operations.
type LedgerFacade interface {
	Balance(ctx context.Context, userID int64) (model.Balance, error)
	LedgerEntries(ctx context.Context, userID int64) ([]model.LedgerEntry, error)
	Deposit(ctx context.Context, actor model.Actor, userID, amount int64, reference string) error
	Reconcile(ctx context.Context, actor model.Actor, userID int64) (model.Balance, bool, error)
}

// MarketFacade aggregates the full set of operations used across handlers.
type MarketFacade interface {
	AuthFacade
	CatalogFacade
	OrderFacade
	ProposalFacade
	ReviewFacade
	LedgerFacade
}
