package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
)

func (c *Client) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	raw, err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/restaurants/%d", id)})
	if err != nil {
		return nil, err
	}
	var r models.Restaurant
	if err := decode(raw, "restaurant", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) GetMenu(ctx context.Context, restaurantID int64) (*models.Menu, error) {
	raw, err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/restaurants/%d/menu", restaurantID)})
	if err != nil {
		return nil, err
	}
	var m models.Menu
	if err := decode(raw, "", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ValidateCoupon checks a code against a subtotal. Any client-side rejection
// comes back as an InvalidCoupon error carrying the server's message.
func (c *Client) ValidateCoupon(ctx context.Context, code string, subtotal money.Amount, restaurantID int64) (*models.CouponValidation, error) {
	raw, err := c.do(ctx, call{
		method:          http.MethodPost,
		path:            "/coupons/validate",
		body:            models.ValidateCouponRequest{Code: code, Subtotal: subtotal, RestaurantID: restaurantID},
		clientErrorKind: apperr.KindInvalidCoupon,
		fallbackMessage: "Invalid coupon code",
	})
	if err != nil {
		return nil, err
	}
	var v models.CouponValidation
	if err := decode(raw, "", &v); err != nil {
		return nil, err
	}
	if v.Coupon.Code == "" {
		v.Coupon.Code = code
	}
	return &v, nil
}

func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	raw, err := c.do(ctx, call{method: http.MethodPost, path: "/orders", body: req})
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

// ListOrders returns the signed-in user's orders, most recent first.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	raw, err := c.do(ctx, call{method: http.MethodGet, path: "/orders"})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Order](raw, "data", "orders")
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	raw, err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/orders/%d", id)})
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

func (c *Client) TrackOrder(ctx context.Context, id int64) (*models.TrackingInfo, error) {
	raw, err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/orders/%d/track", id)})
	if err != nil {
		return nil, err
	}
	var info models.TrackingInfo
	if err := decode(raw, "", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CancelOrder asks the server to cancel. A refusal because the order moved
// past confirmed (409 or 422) is a CancellationNotAllowed error; a malformed
// request keeps its ordinary kind.
func (c *Client) CancelOrder(ctx context.Context, id int64, reason string) (*models.Order, error) {
	raw, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   fmt.Sprintf("/orders/%d/cancel", id),
		body:   models.CancelOrderRequest{Reason: reason},
		statusKinds: map[int]apperr.Kind{
			http.StatusConflict:            apperr.KindCancellationNotAllowed,
			http.StatusUnprocessableEntity: apperr.KindCancellationNotAllowed,
		},
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Kind == apperr.KindCancellationNotAllowed && ae.Message == "" {
			ae.Message = "This order can no longer be cancelled"
		}
		return nil, err
	}
	return decodeOrder(raw)
}

func (c *Client) RateOrder(ctx context.Context, id int64, req models.RateOrderRequest) (*models.Order, error) {
	raw, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   fmt.Sprintf("/orders/%d/rate", id),
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	return decodeOrder(raw)
}

func decodeOrder(raw []byte) (*models.Order, error) {
	var o models.Order
	if err := decode(raw, "order", &o); err != nil {
		return nil, err
	}
	return &o, nil
}
