package model

import (
	"encoding/json"
	"time"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusAccepted            OrderStatus = "accepted"
	OrderStatusInProgress          OrderStatus = "in_progress"
	OrderStatusCompletedByProvider OrderStatus = "completed_by_provider"
	OrderStatusCompleted           OrderStatus = "completed"
	OrderStatusCancelled           OrderStatus = "cancelled"
	OrderStatusDisputed            OrderStatus = "disputed"
	OrderStatusRefunded            OrderStatus = "refunded"
)

// ActiveOrderStatuses lists statuses covered by the one-active-order-per-service rule.
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusInProgress,
}

// Active reports whether the status blocks another order for the same client and service.
func (s OrderStatus) Active() bool {
	for _, st := range ActiveOrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition may leave the status.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// Order is one purchase of one service instance. Price is the escrowed amount.
type Order struct {
	ID          string
	ServiceID   string
	ClientID    int64
	ProviderID  int64
	Price       int64
	Status      OrderStatus
	DeadlineAt  *time.Time
	QuizAnswers json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleOf returns the part the user plays in the order.
func (o *Order) RoleOf(userID int64) Role {
	switch userID {
	case o.ClientID:
		return RoleClient
	case o.ProviderID:
		return RoleProvider
	}
	return RoleNone
}

// Counterparty returns the other participant of the order.
func (o *Order) Counterparty(userID int64) int64 {
	if userID == o.ClientID {
		return o.ProviderID
	}
	return o.ClientID
}

// Role of an actor relative to an order.
type Role string

const (
	RoleNone     Role = ""
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated user performing an action.
type Actor struct {
	UserID int64
	Admin  bool
}

// Action names an order state machine transition.
type Action string

const (
	ActionAccept           Action = "accept"
	ActionDecline          Action = "decline"
	ActionStartWork        Action = "start_work"
	ActionProviderComplete Action = "provider_complete"
	ActionClientConfirm    Action = "client_confirm"
	ActionDispute          Action = "dispute"
	ActionCancel           Action = "cancel"
	ActionResolve          Action = "resolve"
)

// Outcome is the admin decision closing a dispute.
type Outcome string

const (
	OutcomeComplete Outcome = "complete"
	OutcomeRefund   Outcome = "refund"
)
