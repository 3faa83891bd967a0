package dto

import "time"

// CreateServiceRequest publishes a listing.
type CreateServiceRequest struct {
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	MinPrice int64  `json:"min_price"`
}

// ServiceResponse describes a listing.
type ServiceResponse struct {
	ID         string    `json:"id"`
	ProviderID int64     `json:"provider_id"`
	Title      string    `json:"title"`
	Price      int64     `json:"price"`
	MinPrice   int64     `json:"min_price"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}
