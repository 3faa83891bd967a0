package usecase

import (
	"fmt"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type fundsMovement int

const (
	fundsNone fundsMovement = iota
	fundsRelease
	fundsSettle
)

// transition describes one edge of the order state machine.
type transition struct {
	roles []model.Role
	from  []model.OrderStatus
	to    model.OrderStatus
	funds fundsMovement
	event model.Event
}

var transitions = map[model.Action]transition{
	model.ActionAccept: {
		roles: []model.Role{model.RoleProvider},
		from:  []model.OrderStatus{model.OrderStatusPending},
		to:    model.OrderStatusAccepted,
		event: model.EventOrderAccepted,
	},
	model.ActionDecline: {
		roles: []model.Role{model.RoleProvider},
		from:  []model.OrderStatus{model.OrderStatusPending},
		to:    model.OrderStatusCancelled,
		funds: fundsRelease,
		event: model.EventOrderDeclined,
	},
	model.ActionStartWork: {
		roles: []model.Role{model.RoleProvider},
		from:  []model.OrderStatus{model.OrderStatusAccepted},
		to:    model.OrderStatusInProgress,
		event: model.EventWorkStarted,
	},
	model.ActionProviderComplete: {
		roles: []model.Role{model.RoleProvider},
		from:  []model.OrderStatus{model.OrderStatusAccepted, model.OrderStatusInProgress},
		to:    model.OrderStatusCompletedByProvider,
		event: model.EventProviderCompleted,
	},
	model.ActionClientConfirm: {
		roles: []model.Role{model.RoleClient},
		from:  []model.OrderStatus{model.OrderStatusCompletedByProvider},
		to:    model.OrderStatusCompleted,
		funds: fundsSettle,
		event: model.EventOrderCompleted,
	},
	model.ActionDispute: {
		roles: []model.Role{model.RoleClient, model.RoleProvider},
		from:  []model.OrderStatus{model.OrderStatusCompletedByProvider},
		to:    model.OrderStatusDisputed,
		event: model.EventOrderDisputed,
	},
	model.ActionCancel: {
		roles: []model.Role{model.RoleClient},
		from:  []model.OrderStatus{model.OrderStatusPending},
		to:    model.OrderStatusCancelled,
		funds: fundsRelease,
		event: model.EventOrderCancelled,
	},
	// Target and funds of resolve depend on the outcome, see resolveEdge.
	model.ActionResolve: {
		roles: []model.Role{model.RoleAdmin},
		from:  []model.OrderStatus{model.OrderStatusDisputed},
		event: model.EventDisputeResolved,
	},
}

func (t transition) allowsRole(role model.Role) bool {
	for _, r := range t.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (t transition) allowsStatus(status model.OrderStatus) bool {
	for _, s := range t.from {
		if s == status {
			return true
		}
	}
	return false
}

func resolveEdge(t transition, outcome model.Outcome) (transition, error) {
	switch outcome {
	case model.OutcomeComplete:
		t.to = model.OrderStatusCompleted
		t.funds = fundsSettle
	case model.OutcomeRefund:
		t.to = model.OrderStatusRefunded
		t.funds = fundsRelease
	default:
		return t, fmt.Errorf("%w: unknown resolution outcome %q", domainErrors.ErrInvalidTransition, outcome)
	}
	return t, nil
}

// actorRole resolves the role the actor plays for the action. Admins act as
// admins only for admin actions so they cannot confirm on a client's behalf.
func actorRole(order *model.Order, actor model.Actor, t transition) model.Role {
	if role := order.RoleOf(actor.UserID); role != model.RoleNone && t.allowsRole(role) {
		return role
	}
	if actor.Admin && t.allowsRole(model.RoleAdmin) {
		return model.RoleAdmin
	}
	return order.RoleOf(actor.UserID)
}
