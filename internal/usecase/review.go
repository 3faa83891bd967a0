package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/domain/repository"
)

const (
	minRating        = 1
	maxRating        = 5
	maxCommentLength = 1000
)

// LeaveReviewInput is a client's feedback on a completed order.
type LeaveReviewInput struct {
	ClientID int64
	OrderID  string
	Rating   int
	Comment  string
}

// ReviewUseCase decides who may review a service and stores reviews.
type ReviewUseCase struct {
	orders  repository.OrderRepository
	reviews repository.ReviewRepository
	logger  *slog.Logger
}

// NewReviewUseCase constructs ReviewUseCase.
func NewReviewUseCase(orders repository.OrderRepository, reviews repository.ReviewRepository, logger *slog.Logger) *ReviewUseCase {
	return &ReviewUseCase{orders: orders, reviews: reviews, logger: logger}
}

// RemainingEligibleOrders returns completed orders of the client for the
// service that have not been reviewed yet.
func (u *ReviewUseCase) RemainingEligibleOrders(ctx context.Context, clientID int64, serviceID string) ([]string, error) {
	completed, err := u.orders.ListCompleted(ctx, clientID, serviceID)
	if err != nil {
		return nil, err
	}
	reviewed, err := u.reviews.ReviewedOrderIDs(ctx, clientID, serviceID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(reviewed))
	for _, id := range reviewed {
		seen[id] = struct{}{}
	}
	remaining := make([]string, 0, len(completed))
	for _, o := range completed {
		if _, ok := seen[o.ID]; !ok {
			remaining = append(remaining, o.ID)
		}
	}
	return remaining, nil
}

// Eligible reports whether the client has at least one unreviewed completed
// order for the service.
func (u *ReviewUseCase) Eligible(ctx context.Context, clientID int64, serviceID string) (bool, error) {
	remaining, err := u.RemainingEligibleOrders(ctx, clientID, serviceID)
	if err != nil {
		return false, err
	}
	return len(remaining) > 0, nil
}

// LeaveReview stores one review for a completed order of the client.
func (u *ReviewUseCase) LeaveReview(ctx context.Context, in LeaveReviewInput) (*model.Review, error) {
	if in.Rating < minRating || in.Rating > maxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", domainErrors.ErrInvalidInput, minRating, maxRating)
	}
	comment := strings.TrimSpace(in.Comment)
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", domainErrors.ErrInvalidInput, maxCommentLength)
	}

	order, err := u.orders.Get(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != in.ClientID {
		return nil, domainErrors.ErrNotAuthorized
	}
	if order.Status != model.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: order %s is %s", domainErrors.ErrInvalidTransition, order.ID, order.Status)
	}

	review := &model.Review{
		OrderID:    order.ID,
		ServiceID:  order.ServiceID,
		ClientID:   order.ClientID,
		ProviderID: order.ProviderID,
		Rating:     in.Rating,
		Comment:    comment,
	}
	if err := u.reviews.Insert(ctx, review); err != nil {
		return nil, err
	}

	u.logger.Info("review left",
		slog.String("order", review.OrderID),
		slog.String("service", review.ServiceID),
		slog.Int("rating", review.Rating),
	)
	return review, nil
}

// ServiceReviews lists reviews of the service, newest first.
func (u *ReviewUseCase) ServiceReviews(ctx context.Context, serviceID string) ([]model.Review, error) {
	return u.reviews.ListByService(ctx, serviceID)
}
