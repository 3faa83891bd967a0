package app

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/usecase"
)

// MarketFacade is the single entry point used by HTTP handlers and the
// notification dispatcher.
type MarketFacade struct {
	auth          *usecase.AuthUseCase
	telegram      *usecase.TelegramLoginUseCase
	catalog       *usecase.CatalogUseCase
	orders        *usecase.OrderFlow
	proposals     *usecase.ProposalService
	reviews       *usecase.ReviewUseCase
	ledger        *usecase.Ledger
	notifications *usecase.NotificationUseCase
}

func NewMarketFacade(
	auth *usecase.AuthUseCase,
	telegram *usecase.TelegramLoginUseCase,
	catalog *usecase.CatalogUseCase,
	orders *usecase.OrderFlow,
	proposals *usecase.ProposalService,
	reviews *usecase.ReviewUseCase,
	ledger *usecase.Ledger,
	notifications *usecase.NotificationUseCase,
) *MarketFacade {
	return &MarketFacade{
		auth:          auth,
		telegram:      telegram,
		catalog:       catalog,
		orders:        orders,
		proposals:     proposals,
		reviews:       reviews,
		ledger:        ledger,
		notifications: notifications,
	}
}

func (f *MarketFacade) Register(ctx context.Context, login, password string, telegramChatID int64) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, telegramChatID)
	return token, err
}

func (f *MarketFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *MarketFacade) TelegramLogin(ctx context.Context, initData string) (string, error) {
	_, token, err := f.telegram.Login(ctx, initData)
	return token, err
}

func (f *MarketFacade) LinkTelegramChat(ctx context.Context, userID, chatID int64) error {
	return f.auth.LinkTelegramChat(ctx, userID, chatID)
}

func (f *MarketFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *MarketFacade) Actor(userID int64) model.Actor {
	return f.auth.Actor(userID)
}

func (f *MarketFacade) CreateService(ctx context.Context, in usecase.CreateServiceInput) (*model.Service, error) {
	return f.catalog.Create(ctx, in)
}

func (f *MarketFacade) Service(ctx context.Context, id string) (*model.Service, error) {
	return f.catalog.Get(ctx, id)
}

func (f *MarketFacade) Services(ctx context.Context) ([]model.Service, error) {
	return f.catalog.List(ctx)
}

func (f *MarketFacade) CreateOrder(ctx context.Context, in usecase.CreateOrderInput) (*model.Order, error) {
	return f.orders.Create(ctx, in)
}

func (f *MarketFacade) Order(ctx context.Context, id string, actor model.Actor) (*model.Order, error) {
	return f.orders.Get(ctx, id, actor)
}

func (f *MarketFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *MarketFacade) TransitionOrder(ctx context.Context, id string, actor model.Actor, action model.Action, payload usecase.TransitionPayload) (*model.Order, error) {
	return f.orders.Transition(ctx, id, actor, action, payload)
}

func (f *MarketFacade) OrderMessages(ctx context.Context, id string, actor model.Actor) ([]model.ChatMessage, error) {
	return f.notifications.OrderMessages(ctx, id, actor)
}

// Propose defaults a missing bound to the listing's minimum price.
func (f *MarketFacade) Propose(ctx context.Context, in usecase.ProposeInput) (*model.PriceProposal, error) {
	if in.Bound.Kind == "" {
		serviceID := in.ServiceID
		if in.OrderID != "" {
			order, err := f.orders.Get(ctx, in.OrderID, model.Actor{UserID: in.FromUserID})
			if err != nil {
				return nil, err
			}
			serviceID = order.ServiceID
		}
		service, err := f.catalog.Get(ctx, serviceID)
		if err != nil {
			return nil, err
		}
		in.Bound = model.PriceBound{Kind: model.BoundMin, Value: service.MinPrice}
	}
	return f.proposals.Propose(ctx, in)
}

func (f *MarketFacade) Proposal(ctx context.Context, id string, userID int64) (*model.PriceProposal, error) {
	return f.proposals.Get(ctx, id, userID)
}

func (f *MarketFacade) AcceptProposal(ctx context.Context, id string, userID int64) (*model.PriceProposal, error) {
	return f.proposals.Accept(ctx, id, userID)
}

func (f *MarketFacade) RejectProposal(ctx context.Context, id string, userID int64) (*model.PriceProposal, error) {
	return f.proposals.Reject(ctx, id, userID)
}

func (f *MarketFacade) LeaveReview(ctx context.Context, in usecase.LeaveReviewInput) (*model.Review, error) {
	return f.reviews.LeaveReview(ctx, in)
}

func (f *MarketFacade) ServiceReviews(ctx context.Context, serviceID string) ([]model.Review, error) {
	return f.reviews.ServiceReviews(ctx, serviceID)
}

func (f *MarketFacade) ReviewEligibility(ctx context.Context, clientID int64, serviceID string) ([]string, error) {
	return f.reviews.RemainingEligibleOrders(ctx, clientID, serviceID)
}

func (f *MarketFacade) Balance(ctx context.Context, userID int64) (model.Balance, error) {
	return f.ledger.Balance(ctx, userID)
}

func (f *MarketFacade) LedgerEntries(ctx context.Context, userID int64) ([]model.LedgerEntry, error) {
	return f.ledger.Entries(ctx, userID)
}

// Deposit tops up a user's credits. Only admins may call it.
func (f *MarketFacade) Deposit(ctx context.Context, actor model.Actor, userID, amount int64, reference string) error {
	if !actor.Admin {
		return domainErrors.ErrNotAuthorized
	}
	if _, err := f.auth.GetByID(ctx, userID); err != nil {
		return err
	}
	return f.ledger.Deposit(ctx, userID, amount, reference)
}

// Reconcile rebuilds a user's balance from the ledger for an admin. The
// flag is false when the running totals have drifted.
func (f *MarketFacade) Reconcile(ctx context.Context, actor model.Actor, userID int64) (model.Balance, bool, error) {
	if !actor.Admin {
		return model.Balance{}, false, domainErrors.ErrNotAuthorized
	}
	if _, err := f.auth.GetByID(ctx, userID); err != nil {
		return model.Balance{}, false, err
	}
	balance, err := f.ledger.Reconcile(ctx, userID)
	if errors.Is(err, domainErrors.ErrLedgerDrift) {
		return balance, false, nil
	}
	if err != nil {
		return model.Balance{}, false, err
	}
	return balance, true, nil
}

func (f *MarketFacade) DueNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	return f.notifications.Due(ctx, limit)
}

func (f *MarketFacade) DeliverNotification(ctx context.Context, n model.Notification) (bool, error) {
	return f.notifications.Deliver(ctx, n)
}

func (f *MarketFacade) CompleteNotification(ctx context.Context, id string, pushSent bool) error {
	return f.notifications.Complete(ctx, id, pushSent)
}

func (f *MarketFacade) RetryNotification(ctx context.Context, id string, pushSent bool, next time.Time, reason string) error {
	return f.notifications.Retry(ctx, id, pushSent, next, reason)
}

func (f *MarketFacade) FailNotification(ctx context.Context, id string, pushSent bool, reason string) error {
	return f.notifications.Fail(ctx, id, pushSent, reason)
}
