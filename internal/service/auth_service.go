package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/repository"
)

var (
	ErrMissingFields      = errors.New("name, email and password are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

const minPasswordLength = 6

// AuthService registers users and issues bearer tokens
type AuthService struct {
	users  repository.UserRepository
	cost   int
	now    func() time.Time
	logger *slog.Logger
}

// NewAuthService creates a new auth service. A zero bcryptCost uses
// bcrypt.DefaultCost.
func NewAuthService(users repository.UserRepository, bcryptCost int, logger *slog.Logger) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:  users,
		cost:   bcryptCost,
		now:    time.Now,
		logger: logger,
	}
}

// Register creates the account and signs it in
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	switch {
	case req.Name == "" || req.Email == "" || req.Password == "":
		return nil, ErrMissingFields
	case len(req.Password) < minPasswordLength:
		return nil, ErrPasswordTooShort
	case req.Password != req.PasswordConfirmation:
		return nil, ErrPasswordMismatch
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, ErrInvalidEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}

	rec, err := s.users.CreateUser(ctx, repository.UserRecord{
		User: models.User{
			Name:      req.Name,
			Email:     strings.ToLower(req.Email),
			Phone:     req.Phone,
			CreatedAt: s.now().UTC(),
		},
		PasswordHash: hash,
	})
	if errors.Is(err, repository.ErrEmailTaken) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", rec.ID)
	return s.issue(ctx, rec.User)
}

// Login checks the credentials and issues a new token
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	rec, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, rec.User)
}

func (s *AuthService) issue(ctx context.Context, u models.User) (*models.AuthResponse, error) {
	token := uuid.NewString()
	if err := s.users.SaveToken(ctx, token, u.ID); err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: u}, nil
}

// Logout revokes the token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.users.DeleteToken(ctx, token)
}

// Authenticate resolves a bearer token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	id, err := s.users.UserIDForToken(ctx, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	rec, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return &rec.User, nil
}
