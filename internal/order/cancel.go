package order

import (
	"context"
	"fmt"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

// Canceller is the slice of the order service Cancel needs.
type Canceller interface {
	CancelOrder(ctx context.Context, id int64, reason string) (*models.Order, error)
}

// Cancel asks the service to cancel o. Orders past confirmed are rejected
// locally without a request; the service's own refusal surfaces with the same
// kind.
func Cancel(ctx context.Context, svc Canceller, o *models.Order, reason string) (*models.Order, error) {
	if o == nil {
		return nil, apperr.Validation("no order to cancel")
	}
	if !CanCancel(o.Status) {
		return nil, apperr.New(apperr.KindCancellationNotAllowed,
			fmt.Sprintf("Order %s is %s and can no longer be cancelled", o.OrderNumber, Label(o.Status)))
	}
	updated, err := svc.CancelOrder(ctx, o.ID, reason)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.ErrEmptyResponse
	}
	return updated, nil
}
