package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

var ErrEmptyAddress = apperr.Validation("Please enter an address")

func (c *Client) GetProfile(ctx context.Context) (*models.User, error) {
	raw, err := c.do(ctx, call{method: http.MethodGet, path: "/profile"})
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := decode(raw, "user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile saves name and phone and refreshes the cached profile.
func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		return nil, ErrMissingName
	}

	raw, err := c.do(ctx, call{method: http.MethodPut, path: "/profile", body: req})
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := decode(raw, "user", &u); err != nil {
		return nil, err
	}
	if err := c.session.UpdateUser(ctx, &u); err != nil {
		c.logger.Warn("failed to cache profile", "error", err)
	}
	return &u, nil
}

func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	raw, err := c.do(ctx, call{method: http.MethodGet, path: "/profile/addresses"})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Address](raw, "addresses", "data")
}

func (c *Client) CreateAddress(ctx context.Context, in models.AddressInput) (*models.Address, error) {
	if strings.TrimSpace(in.Address) == "" {
		return nil, ErrEmptyAddress
	}
	raw, err := c.do(ctx, call{method: http.MethodPost, path: "/profile/addresses", body: in})
	if err != nil {
		return nil, err
	}
	return decodeAddress(raw)
}

func (c *Client) UpdateAddress(ctx context.Context, id int64, in models.AddressInput) (*models.Address, error) {
	if strings.TrimSpace(in.Address) == "" {
		return nil, ErrEmptyAddress
	}
	raw, err := c.do(ctx, call{method: http.MethodPut, path: fmt.Sprintf("/profile/addresses/%d", id), body: in})
	if err != nil {
		return nil, err
	}
	return decodeAddress(raw)
}

func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: fmt.Sprintf("/profile/addresses/%d", id)})
	return err
}

// SetDefaultAddress makes id the single default address.
func (c *Client) SetDefaultAddress(ctx context.Context, id int64) (*models.Address, error) {
	raw, err := c.do(ctx, call{method: http.MethodPost, path: fmt.Sprintf("/profile/addresses/%d/default", id)})
	if err != nil {
		return nil, err
	}
	return decodeAddress(raw)
}

func decodeAddress(raw []byte) (*models.Address, error) {
	var a models.Address
	if err := decode(raw, "address", &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	raw, err := c.do(ctx, call{method: http.MethodGet, path: "/notifications"})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Notification](raw, "notifications", "data")
}

// MarkNotificationRead is best effort: failures are logged and dropped.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) {
	if _, err := c.do(ctx, call{method: http.MethodPost, path: fmt.Sprintf("/notifications/%d/read", id)}); err != nil {
		c.logger.Debug("failed to mark notification read", "notification_id", id, "error", err)
	}
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/notifications/read-all"})
	return err
}
