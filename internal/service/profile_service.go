package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/repository"
)

var (
	ErrNameRequired         = errors.New("name is required")
	ErrAddressRequired      = errors.New("address is required")
	ErrAddressNotFound      = errors.New("address not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// ProfileService manages a user's profile, saved addresses and notifications
type ProfileService struct {
	users  repository.UserRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(users repository.UserRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		users:  users,
		now:    time.Now,
		logger: logger,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	rec, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &rec.User, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return s.users.UpdateUser(ctx, models.User{ID: userID, Name: name, Phone: strings.TrimSpace(req.Phone)})
}

func (s *ProfileService) ListAddresses(ctx context.Context, userID int64) ([]models.Address, error) {
	return s.users.ListAddresses(ctx, userID)
}

func (s *ProfileService) GetAddress(ctx context.Context, userID, id int64) (*models.Address, error) {
	a, err := s.users.GetAddress(ctx, userID, id)
	if errors.Is(err, repository.ErrAddressNotFound) {
		return nil, ErrAddressNotFound
	}
	return a, err
}

// CreateAddress saves a new address. The first one becomes the default.
func (s *ProfileService) CreateAddress(ctx context.Context, userID int64, in models.AddressInput) (*models.Address, error) {
	a, err := addressFromInput(in)
	if err != nil {
		return nil, err
	}
	return s.users.SaveAddress(ctx, userID, a)
}

func (s *ProfileService) UpdateAddress(ctx context.Context, userID, id int64, in models.AddressInput) (*models.Address, error) {
	a, err := addressFromInput(in)
	if err != nil {
		return nil, err
	}
	a.ID = id
	saved, err := s.users.SaveAddress(ctx, userID, a)
	if errors.Is(err, repository.ErrAddressNotFound) {
		return nil, ErrAddressNotFound
	}
	return saved, err
}

func (s *ProfileService) DeleteAddress(ctx context.Context, userID, id int64) error {
	err := s.users.DeleteAddress(ctx, userID, id)
	if errors.Is(err, repository.ErrAddressNotFound) {
		return ErrAddressNotFound
	}
	return err
}

func (s *ProfileService) SetDefaultAddress(ctx context.Context, userID, id int64) (*models.Address, error) {
	a, err := s.users.SetDefaultAddress(ctx, userID, id)
	if errors.Is(err, repository.ErrAddressNotFound) {
		return nil, ErrAddressNotFound
	}
	return a, err
}

func addressFromInput(in models.AddressInput) (models.Address, error) {
	addr := strings.TrimSpace(in.Address)
	if addr == "" {
		return models.Address{}, ErrAddressRequired
	}
	label := strings.TrimSpace(in.Label)
	if label == "" {
		label = "Home"
	}
	return models.Address{
		Label:     label,
		Address:   addr,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Phone:     strings.TrimSpace(in.Phone),
		IsDefault: in.IsDefault,
	}, nil
}

func (s *ProfileService) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.users.ListNotifications(ctx, userID)
}

func (s *ProfileService) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	err := s.users.MarkNotificationRead(ctx, userID, id, s.now().UTC())
	if errors.Is(err, repository.ErrNotificationNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *ProfileService) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	return s.users.MarkAllNotificationsRead(ctx, userID, s.now().UTC())
}

// Notify records a notification for the user. Failures are logged and dropped.
func (s *ProfileService) Notify(ctx context.Context, userID int64, orderID int64, kind, title, message string) {
	n := models.Notification{
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: s.now().UTC(),
	}
	if orderID != 0 {
		n.OrderID = &orderID
	}
	if _, err := s.users.AddNotification(ctx, userID, n); err != nil {
		s.logger.Warn("failed to record notification", "user_id", userID, "order_id", orderID, "error", err)
	}
}
