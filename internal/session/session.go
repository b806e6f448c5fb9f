// Package session keeps the authenticated token and cached user profile.
// A Session is created once at startup and passed to whatever needs it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

// Data is the persisted form of a session.
type Data struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

// Store persists session data between runs.
type Store interface {
	// Load returns nil data and no error when nothing is stored.
	Load(ctx context.Context) (*Data, error)
	Save(ctx context.Context, d Data) error
	Clear(ctx context.Context) error
}

type Session struct {
	store  Store
	logger *slog.Logger

	// changeMu serialises changes so the store and memory agree.
	changeMu sync.Mutex

	mu       sync.RWMutex
	token    string
	user     *models.User
	onExpire []func()
}

func New(store Store, logger *slog.Logger) *Session {
	return &Session{
		store:  store,
		logger: logger,
	}
}

// Restore loads a previously saved session. It reports whether one was found.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	d, err := s.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if d == nil || d.Token == "" {
		return false, nil
	}

	s.mu.Lock()
	s.token = d.Token
	s.user = d.User
	s.mu.Unlock()
	return true, nil
}

// Start records a fresh login or registration.
func (s *Session) Start(ctx context.Context, token string, user *models.User) error {
	if token == "" {
		return fmt.Errorf("empty session token")
	}
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	if err := s.store.Save(ctx, Data{Token: token, User: user}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

// UpdateUser replaces the cached profile, keeping the token.
func (s *Session) UpdateUser(ctx context.Context, user *models.User) error {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	s.mu.Lock()
	token := s.token
	s.user = user
	s.mu.Unlock()

	if token == "" {
		return nil
	}
	if err := s.store.Save(ctx, Data{Token: token, User: user}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// End tears the session down on logout.
func (s *Session) End(ctx context.Context) error {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	s.clear()
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Expire tears the session down after the backend rejected the token and
// notifies OnExpire hooks. Store errors are logged, not returned.
func (s *Session) Expire(ctx context.Context) {
	s.expire(ctx, func(string) bool { return true })
}

// ExpireToken is Expire for a rejection of token. It does nothing when the
// session has since moved on to another token, and reports whether the
// session was torn down.
func (s *Session) ExpireToken(ctx context.Context, token string) bool {
	return s.expire(ctx, func(current string) bool { return current == token })
}

func (s *Session) expire(ctx context.Context, match func(current string) bool) bool {
	s.changeMu.Lock()
	s.mu.RLock()
	current := s.token
	hooks := append([]func(){}, s.onExpire...)
	s.mu.RUnlock()

	if !match(current) {
		s.changeMu.Unlock()
		return false
	}
	s.clear()
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear expired session", "error", err)
	}
	s.changeMu.Unlock()

	if current == "" {
		return false
	}
	s.logger.Info("session expired")
	for _, fn := range hooks {
		fn()
	}
	return true
}

// OnExpire registers fn to run when the session expires.
func (s *Session) OnExpire(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = append(s.onExpire, fn)
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the cached profile, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) clear() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}
