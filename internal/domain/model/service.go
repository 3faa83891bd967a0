package model

import "time"

// Service is a listing offered by a provider.
type Service struct {
	ID         string
	ProviderID int64
	Title      string
	Price      int64
	MinPrice   int64
	Active     bool
	CreatedAt  time.Time
}
