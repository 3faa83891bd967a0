package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/server/http/dto"
	"github.com/polkiloo/tgmarket/internal/usecase"
)

// ReviewHandler serves reviews and review eligibility.
type ReviewHandler struct {
	facade ReviewFacade
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(facade ReviewFacade) *ReviewHandler {
	return &ReviewHandler{facade: facade}
}

// Leave handles POST /api/orders/:id/review.
func (h *ReviewHandler) Leave(c *gin.Context) {
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	review, err := h.facade.LeaveReview(c.Request.Context(), usecase.LeaveReviewInput{
		ClientID: CurrentUserID(c),
		OrderID:  c.Param("id"),
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReviewResponse(*review))
}

// List handles GET /api/services/:id/reviews.
func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.facade.ServiceReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp = append(resp, toReviewResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// Eligibility handles GET /api/services/:id/review-eligibility.
func (h *ReviewHandler) Eligibility(c *gin.Context) {
	orderIDs, err := h.facade.ReviewEligibility(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if orderIDs == nil {
		orderIDs = []string{}
	}
	c.JSON(http.StatusOK, dto.ReviewEligibilityResponse{Eligible: len(orderIDs) > 0, OrderIDs: orderIDs})
}

func toReviewResponse(r model.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:        r.ID,
		OrderID:   r.OrderID,
		ServiceID: r.ServiceID,
		ClientID:  r.ClientID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
