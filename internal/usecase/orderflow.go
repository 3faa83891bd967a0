package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
)

const tracerName = "github.com/polkiloo/tgmarket/internal/usecase"

// Waker is signalled after a transaction enqueued notifications.
type Waker interface {
	Wake()
}

// CreateOrderInput describes a "place order" request.
type CreateOrderInput struct {
	ClientID   int64
	ServiceID  string
	ProposalID string
	// Price is optional. When set it must equal the listing price or the
	// agreed proposal price.
	Price       int64
	DeadlineAt  *time.Time
	QuizAnswers json.RawMessage
}

// TransitionPayload carries action specific arguments.
type TransitionPayload struct {
	Outcome model.Outcome
}

// OrderFlow is the order state machine. Each transition is a single
// conditional update on the order status committed together with its ledger
// movement and outbox notification.
type OrderFlow struct {
	tx     repository.Transactor
	repos  repository.Factory
	waker  Waker
	logger *slog.Logger
	tracer trace.Tracer
}

// NewOrderFlow constructs OrderFlow.
func NewOrderFlow(tx repository.Transactor, repos repository.Factory, waker Waker, logger *slog.Logger) *OrderFlow {
	return &OrderFlow{
		tx:     tx,
		repos:  repos,
		waker:  waker,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// Create places an order and holds its price in escrow.
func (f *OrderFlow) Create(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	ctx, span := f.tracer.Start(ctx, "OrderFlow.Create", trace.WithAttributes(
		attribute.Int64("order.client_id", in.ClientID),
		attribute.String("order.service_id", in.ServiceID),
	))
	defer span.End()

	order, err := f.create(ctx, in)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.Int64("order.price", order.Price))
	return order, nil
}

func (f *OrderFlow) create(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	service, err := f.repos.Services().Get(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.Active {
		return nil, fmt.Errorf("%w: service %s is not available", domainErrors.ErrInvalidTransition, service.ID)
	}
	if service.ProviderID == in.ClientID {
		return nil, fmt.Errorf("%w: cannot order own service", domainErrors.ErrInvalidTransition)
	}

	price := service.Price
	if in.ProposalID != "" {
		if price, err = f.agreedPrice(ctx, in.ProposalID, service, in.ClientID); err != nil {
			return nil, err
		}
	}
	if in.Price != 0 && in.Price != price {
		return nil, domainErrors.ErrPriceMismatch
	}
	if price <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}

	order := &model.Order{
		ID:          uuid.NewString(),
		ServiceID:   service.ID,
		ClientID:    in.ClientID,
		ProviderID:  service.ProviderID,
		Price:       price,
		Status:      model.OrderStatusPending,
		DeadlineAt:  in.DeadlineAt,
		QuizAnswers: in.QuizAnswers,
	}

	err = f.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		if in.ProposalID != "" {
			_, err := repos.Proposals().Consume(ctx, in.ProposalID)
			if errors.Is(err, domainErrors.ErrConflict) {
				return fmt.Errorf("%w: proposal %s was already used", domainErrors.ErrStaleProposal, in.ProposalID)
			}
			if err != nil {
				return err
			}
		}
		if err := repos.Orders().Insert(ctx, order); err != nil {
			return err
		}
		if err := NewLedger(repos.Ledger()).Hold(ctx, order.ClientID, order.ID, order.Price); err != nil {
			return err
		}
		return repos.Notifications().Enqueue(ctx, orderNotification(order, model.EventOrderCreated, order.ClientID))
	})
	if err != nil {
		return nil, err
	}

	f.waker.Wake()
	f.logger.Info("order created",
		slog.String("order", order.ID),
		slog.String("service", order.ServiceID),
		slog.Int64("client", order.ClientID),
		slog.Int64("price", order.Price),
	)
	return order, nil
}

func (f *OrderFlow) agreedPrice(ctx context.Context, proposalID string, service *model.Service, clientID int64) (int64, error) {
	p, err := f.repos.Proposals().Get(ctx, proposalID)
	if err != nil {
		return 0, err
	}
	if p.Status != model.ProposalStatusAccepted {
		return 0, fmt.Errorf("%w: proposal %s is %s", domainErrors.ErrStaleProposal, p.ID, p.Status)
	}
	if p.ServiceID != service.ID {
		return 0, fmt.Errorf("%w: proposal %s belongs to another service", domainErrors.ErrPriceMismatch, p.ID)
	}
	if !sameParties(p.FromUserID, p.ToUserID, clientID, service.ProviderID) {
		return 0, domainErrors.ErrNotAuthorized
	}
	return p.ProposedPrice, nil
}

// Transition applies action on behalf of actor. A lost race against another
// transition of the same order yields ErrConflict and the caller must re-read
// the order before retrying.
func (f *OrderFlow) Transition(ctx context.Context, orderID string, actor model.Actor, action model.Action, payload TransitionPayload) (*model.Order, error) {
	ctx, span := f.tracer.Start(ctx, "OrderFlow.Transition", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.action", string(action)),
		attribute.Int64("actor.id", actor.UserID),
	))
	defer span.End()

	order, err := f.transition(ctx, orderID, actor, action, payload)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("order.status", string(order.Status)))
	return order, nil
}

func (f *OrderFlow) transition(ctx context.Context, orderID string, actor model.Actor, action model.Action, payload TransitionPayload) (*model.Order, error) {
	edge, ok := transitions[action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", domainErrors.ErrInvalidTransition, action)
	}

	order, err := f.repos.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	role := actorRole(order, actor, edge)
	if role == model.RoleNone && !actor.Admin {
		return nil, domainErrors.ErrNotAuthorized
	}
	if !edge.allowsRole(role) {
		return nil, fmt.Errorf("%w: %s may not %s", domainErrors.ErrInvalidTransition, roleName(role), action)
	}
	if !edge.allowsStatus(order.Status) {
		return nil, fmt.Errorf("%w: cannot %s order in status %s", domainErrors.ErrInvalidTransition, action, order.Status)
	}
	if action == model.ActionResolve {
		if edge, err = resolveEdge(edge, payload.Outcome); err != nil {
			return nil, err
		}
	}

	var updated *model.Order
	err = f.tx.WithinTransaction(ctx, func(ctx context.Context, repos repository.Factory) error {
		var err error
		updated, err = repos.Orders().ConditionalUpdate(ctx, order.ID, order.Status, edge.to)
		if err != nil {
			return err
		}

		ledger := NewLedger(repos.Ledger())
		switch edge.funds {
		case fundsRelease:
			err = ledger.Release(ctx, updated.ClientID, updated.ID, updated.Price)
		case fundsSettle:
			err = ledger.Settle(ctx, updated.ClientID, updated.ProviderID, updated.ID, updated.Price)
		}
		if err != nil {
			return err
		}

		return repos.Notifications().Enqueue(ctx, orderNotification(updated, edge.event, actor.UserID))
	})
	if err != nil {
		return nil, err
	}

	f.waker.Wake()
	f.logger.Info("order transitioned",
		slog.String("order", updated.ID),
		slog.String("action", string(action)),
		slog.String("from", string(order.Status)),
		slog.String("to", string(updated.Status)),
		slog.Int64("actor", actor.UserID),
	)
	return updated, nil
}

// Get returns the order if the actor participates in it or is an admin.
func (f *OrderFlow) Get(ctx context.Context, orderID string, actor model.Actor) (*model.Order, error) {
	order, err := f.repos.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.RoleOf(actor.UserID) == model.RoleNone && !actor.Admin {
		return nil, domainErrors.ErrNotAuthorized
	}
	return order, nil
}

// ListByUser returns orders where the user is client or provider.
func (f *OrderFlow) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.repos.Orders().ListByUser(ctx, userID)
}

func orderNotification(order *model.Order, event model.Event, actorID int64) *model.Notification {
	return &model.Notification{
		Event:      event,
		OrderID:    order.ID,
		ActorID:    actorID,
		ClientID:   order.ClientID,
		ProviderID: order.ProviderID,
		Price:      order.Price,
		Status:     order.Status,
	}
}

func roleName(role model.Role) string {
	if role == model.RoleNone {
		return "outsider"
	}
	return string(role)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
