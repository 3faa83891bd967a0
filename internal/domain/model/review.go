package model

import "time"

// Review is client feedback on a completed order.
type Review struct {
	ID         string
	OrderID    string
	ServiceID  string
	ClientID   int64
	ProviderID int64
	Rating     int
	Comment    string
	CreatedAt  time.Time
}
