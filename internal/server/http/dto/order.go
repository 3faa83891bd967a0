package dto

import (
	"encoding/json"
	"time"
)

// CreateOrderRequest places an order. Price is optional and must match the
// listing or the accepted proposal when given.
type CreateOrderRequest struct {
	ServiceID   string          `json:"service_id"`
	ProposalID  string          `json:"proposal_id,omitempty"`
	Price       int64           `json:"price,omitempty"`
	DeadlineAt  *time.Time      `json:"deadline_at,omitempty"`
	QuizAnswers json.RawMessage `json:"quiz_answers,omitempty"`
}

// OrderResponse describes an order.
type OrderResponse struct {
	ID          string          `json:"id"`
	ServiceID   string          `json:"service_id"`
	ClientID    int64           `json:"client_id"`
	ProviderID  int64           `json:"provider_id"`
	Price       int64           `json:"price"`
	Status      string          `json:"status"`
	DeadlineAt  *time.Time      `json:"deadline_at,omitempty"`
	QuizAnswers json.RawMessage `json:"quiz_answers,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TransitionRequest asks the order state machine to apply an action.
type TransitionRequest struct {
	Action  string `json:"action"`
	Outcome string `json:"outcome,omitempty"`
}

// MessageResponse is a chat message posted about an order.
type MessageResponse struct {
	ID        string          `json:"id"`
	SenderID  int64           `json:"sender_id"`
	Text      string          `json:"text"`
	Meta      json.RawMessage `json:"meta"`
	CreatedAt time.Time       `json:"created_at"`
}

// ErrorResponse carries the error text. Order is the current state of the
// order when an update lost a race.
type ErrorResponse struct {
	Error string         `json:"error"`
	Order *OrderResponse `json:"order,omitempty"`
}
