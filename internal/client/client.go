// Package client is the typed REST client for the ordering API. Every failure
// it returns is an *apperr.Error; a 401 tears the session down.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/session"
)

const (
	DefaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
	userAgent      = "myinsam-resto-client/1.0"
)

const expiredMessage = "Your session has expired. Please log in again."

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
	logger     *slog.Logger
}

// New creates a client. Requests carry the session's bearer token when one
// is set.
func New(cfg Config, sess *session.Session, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		session:    sess,
		logger:     logger,
	}
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// call describes one request and how its failures are classified.
type call struct {
	method string
	path   string
	body   any

	// public requests never send a token, and a 401 on them is a plain
	// failure rather than an expired session.
	public bool
	// statusKinds overrides the kind for specific statuses.
	statusKinds map[int]apperr.Kind
	// clientErrorKind, when set, applies to every other 4xx.
	clientErrorKind apperr.Kind
	// fallbackMessage is used when the server sends no message.
	fallbackMessage string
}

func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnknown, fmt.Errorf("marshal %s %s: %w", cl.method, cl.path, err), "")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRequestFailed, fmt.Errorf("failed to create request: %w", err), "")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	var token string
	if !cl.public {
		if token = c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", cl.method, "path", cl.path, "error", err)
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(err)
	}

	c.logger.Debug("request completed",
		"method", cl.method,
		"path", cl.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, c.statusError(ctx, cl, token, resp.StatusCode, raw)
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperr.Wrap(apperr.KindRequestTimeout, err, "The request timed out. Please try again.")
	}
	return apperr.Wrap(apperr.KindRequestFailed, err, "")
}

// statusError classifies a failed response. token is the one the request
// carried; a 401 only ends the session if that token is still current.
func (c *Client) statusError(ctx context.Context, cl call, token string, status int, raw []byte) error {
	msg := serverMessage(raw)

	var kind apperr.Kind
	switch k, ok := cl.statusKinds[status]; {
	case ok:
		kind = k
	case status == http.StatusUnauthorized && !cl.public:
		if token != "" && !c.session.ExpireToken(ctx, token) {
			c.logger.Debug("ignoring 401 for a token no longer in use", "method", cl.method, "path", cl.path)
		}
		kind = apperr.KindAuthenticationExpired
		if msg == "" {
			msg = expiredMessage
		}
	case status >= 400 && status < 500 && cl.clientErrorKind != apperr.KindUnknown:
		kind = cl.clientErrorKind
	case status == http.StatusNotFound:
		kind = apperr.KindNotFound
	case status == http.StatusUnprocessableEntity:
		kind = apperr.KindValidation
	default:
		kind = apperr.KindRequestFailed
	}

	if msg == "" {
		msg = cl.fallbackMessage
	}
	return &apperr.Error{Kind: kind, Message: msg, Status: status}
}

// serverMessage pulls the human-readable message out of an error body. The
// API uses "message"; some endpoints answer with "error".
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// decode unmarshals raw into out. When raw is an object holding key, the
// value under key is used instead, so both {"order": {...}} and a bare
// order decode the same way.
func decode(raw []byte, key string, out any) error {
	if key != "" {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(raw, &env); err == nil {
			if inner, ok := env[key]; ok && !isNull(inner) {
				raw = inner
			}
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Wrap(apperr.KindRequestFailed, fmt.Errorf("decode response: %w", err), "")
	}
	return nil
}

// decodeList accepts a bare array or an object carrying the array under one
// of keys.
func decodeList[T any](raw []byte, keys ...string) ([]T, error) {
	var out []T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, apperr.Wrap(apperr.KindRequestFailed, fmt.Errorf("decode list: %w", err), "")
		}
		return out, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, apperr.Wrap(apperr.KindRequestFailed, fmt.Errorf("decode list: %w", err), "")
	}
	for _, k := range keys {
		inner, ok := env[k]
		if !ok || isNull(inner) {
			continue
		}
		if err := json.Unmarshal(inner, &out); err != nil {
			return nil, apperr.Wrap(apperr.KindRequestFailed, fmt.Errorf("decode %s: %w", k, err), "")
		}
		return out, nil
	}
	return []T{}, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
