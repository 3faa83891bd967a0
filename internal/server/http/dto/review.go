package dto

import "time"

// ReviewRequest is client feedback on a completed order.
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewResponse describes a stored review.
type ReviewResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	ServiceID string    `json:"service_id"`
	ClientID  int64     `json:"client_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewEligibilityResponse lists the completed orders still open for review.
type ReviewEligibilityResponse struct {
	Eligible bool     `json:"eligible"`
	OrderIDs []string `json:"order_ids"`
}
