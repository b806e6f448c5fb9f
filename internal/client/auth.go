package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

var (
	ErrMissingCredentials = apperr.Validation("Please enter your email and password")
	ErrMissingName        = apperr.Validation("Please enter your name")
	ErrPasswordMismatch   = apperr.Validation("Passwords do not match")
)

var authCall = call{
	method: http.MethodPost,
	public: true,
	statusKinds: map[int]apperr.Kind{
		http.StatusUnauthorized: apperr.KindValidation,
	},
	fallbackMessage: "Invalid email or password",
}

// Login authenticates and starts the session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	cl := authCall
	cl.path = "/auth/login"
	cl.body = models.LoginRequest{Email: email, Password: password}
	return c.authenticate(ctx, cl)
}

// Register creates an account and starts the session.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	switch {
	case req.Name == "":
		return nil, ErrMissingName
	case req.Email == "" || req.Password == "":
		return nil, ErrMissingCredentials
	case req.Password != req.PasswordConfirmation:
		return nil, ErrPasswordMismatch
	}

	cl := authCall
	cl.path = "/auth/register"
	cl.body = req
	cl.fallbackMessage = "Registration failed"
	return c.authenticate(ctx, cl)
}

func (c *Client) authenticate(ctx context.Context, cl call) (*models.User, error) {
	raw, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}

	var res models.AuthResponse
	if err := decode(raw, "", &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, apperr.New(apperr.KindRequestFailed, "Login response had no token")
	}

	user := res.User
	if err := c.session.Start(ctx, res.Token, &user); err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, err, "")
	}
	c.logger.Info("signed in", "user_id", user.ID)
	return &user, nil
}

// Logout tells the server and always ends the local session, even when the
// server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.session.Authenticated() {
		if _, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/logout"}); err != nil {
			c.logger.Warn("server logout failed", "error", err)
		}
	}
	if err := c.session.End(ctx); err != nil {
		return apperr.Wrap(apperr.KindUnknown, err, "")
	}
	return nil
}

// Me fetches the signed-in user and refreshes the cached profile.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	raw, err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me"})
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
