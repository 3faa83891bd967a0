package dto

import "time"

// BoundRequest limits the proposed price.
type BoundRequest struct {
	Kind  string `json:"kind"`
	Value int64  `json:"value"`
}

// ProposalRequest is a counter-offer on a service or on a pending order.
type ProposalRequest struct {
	ServiceID string        `json:"service_id,omitempty"`
	OrderID   string        `json:"order_id,omitempty"`
	ToUserID  int64         `json:"to_user_id"`
	Price     int64         `json:"price"`
	Bound     *BoundRequest `json:"bound,omitempty"`
}

// ProposalResponse describes a price proposal.
type ProposalResponse struct {
	ID            string     `json:"id"`
	ServiceID     string     `json:"service_id"`
	OrderID       string     `json:"order_id,omitempty"`
	FromUserID    int64      `json:"from_user_id"`
	ToUserID      int64      `json:"to_user_id"`
	ProposedPrice int64      `json:"proposed_price"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}
