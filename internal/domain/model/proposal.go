package model

import "time"

// ProposalStatus tracks price negotiation resolution.
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
	// ProposalStatusConsumed marks an accepted proposal whose price has
	// seeded an order.
	ProposalStatusConsumed ProposalStatus = "consumed"
)

// BoundKind tells whether a price bound is a floor or a ceiling.
type BoundKind string

const (
	BoundMin BoundKind = "min"
	BoundMax BoundKind = "max"
)

// PriceBound limits acceptable proposal prices.
type PriceBound struct {
	Kind  BoundKind
	Value int64
}

// Known reports whether the bound kind is supported.
func (b PriceBound) Known() bool {
	return b.Kind == BoundMin || b.Kind == BoundMax
}

// Allows reports whether price satisfies the bound.
func (b PriceBound) Allows(price int64) bool {
	switch b.Kind {
	case BoundMin:
		return price >= b.Value
	case BoundMax:
		return price <= b.Value
	}
	return false
}

// PriceProposal is a counter-offer on a service (pre-order) or on an order.
type PriceProposal struct {
	ID            string
	OrderID       *string
	ServiceID     string
	FromUserID    int64
	ToUserID      int64
	ProposedPrice int64
	Status        ProposalStatus
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}

// OrderScoped reports whether the proposal renegotiates an existing order.
func (p *PriceProposal) OrderScoped() bool {
	return p.OrderID != nil && *p.OrderID != ""
}
