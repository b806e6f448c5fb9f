package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

func (c *Client) InitiateMobilePayment(ctx context.Context, req models.InitiatePaymentRequest) (*models.Payment, error) {
	raw, err := c.do(ctx, call{
		method:          http.MethodPost,
		path:            "/payments/initiate-mobile",
		body:            req,
		fallbackMessage: "Could not start the payment",
	})
	if err != nil {
		return nil, err
	}
	return decodePayment(raw)
}

func (c *Client) CheckPaymentStatus(ctx context.Context, id int64) (*models.Payment, error) {
	raw, err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/payments/%d/status", id)})
	if err != nil {
		return nil, err
	}
	return decodePayment(raw)
}

func decodePayment(raw []byte) (*models.Payment, error) {
	var p models.Payment
	if err := decode(raw, "payment", &p); err != nil {
		return nil, err
	}
	return &p, nil
}
