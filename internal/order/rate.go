package order

import (
	"context"
	"strings"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

var (
	ErrNotDelivered  = apperr.Validation("Only delivered orders can be rated")
	ErrAlreadyRated  = apperr.Validation("This order has already been rated")
	ErrRatingOutside = apperr.Validation("Ratings must be between 1 and 5")
)

type Rater interface {
	RateOrder(ctx context.Context, id int64, req models.RateOrderRequest) (*models.Order, error)
}

// ValidateRating checks a rating locally before it is sent.
func ValidateRating(o *models.Order, req models.RateOrderRequest) error {
	if o.Status != StatusDelivered {
		return ErrNotDelivered
	}
	if o.Rating != nil {
		return ErrAlreadyRated
	}
	if !inRange(req.RestaurantRating) || !inRange(req.DriverRating) {
		return ErrRatingOutside
	}
	return nil
}

// Rate validates and submits a rating for a delivered order.
func Rate(ctx context.Context, svc Rater, o *models.Order, req models.RateOrderRequest) (*models.Order, error) {
	req.Comment = strings.TrimSpace(req.Comment)
	if err := ValidateRating(o, req); err != nil {
		return nil, err
	}
	rated, err := svc.RateOrder(ctx, o.ID, req)
	if err != nil {
		return nil, err
	}
	if rated == nil {
		return nil, apperr.ErrEmptyResponse
	}
	return rated, nil
}

func inRange(n int) bool {
	return n >= 1 && n <= 5
}
