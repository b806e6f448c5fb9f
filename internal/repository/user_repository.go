package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrTokenNotFound        = errors.New("token not found")
	ErrAddressNotFound      = errors.New("address not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// UserRecord is a stored account.
type UserRecord struct {
	models.User
	PasswordHash []byte
}

// UserRepository stores accounts with their tokens, addresses and notifications.
type UserRepository interface {
	CreateUser(ctx context.Context, rec UserRecord) (*UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetUser(ctx context.Context, id int64) (*UserRecord, error)
	UpdateUser(ctx context.Context, u models.User) (*models.User, error)

	SaveToken(ctx context.Context, token string, userID int64) error
	UserIDForToken(ctx context.Context, token string) (int64, error)
	DeleteToken(ctx context.Context, token string) error

	ListAddresses(ctx context.Context, userID int64) ([]models.Address, error)
	GetAddress(ctx context.Context, userID, id int64) (*models.Address, error)
	SaveAddress(ctx context.Context, userID int64, a models.Address) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, id int64) error
	SetDefaultAddress(ctx context.Context, userID, id int64) (*models.Address, error)

	AddNotification(ctx context.Context, userID int64, n models.Notification) (*models.Notification, error)
	ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id int64, at time.Time) error
	MarkAllNotificationsRead(ctx context.Context, userID int64, at time.Time) error
}

// InMemoryUserRepository implements UserRepository with in-memory storage
type InMemoryUserRepository struct {
	mu            sync.RWMutex
	users         map[int64]*UserRecord
	emails        map[string]int64
	tokens        map[string]int64
	addresses     map[int64][]models.Address
	notifications map[int64][]models.Notification
	nextUser      int64
	nextAddress   int64
	nextNotif     int64
}

// NewInMemoryUserRepository creates an empty user repository
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:         make(map[int64]*UserRecord),
		emails:        make(map[string]int64),
		tokens:        make(map[string]int64),
		addresses:     make(map[int64][]models.Address),
		notifications: make(map[int64][]models.Notification),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *InMemoryUserRepository) CreateUser(ctx context.Context, rec UserRecord) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(rec.Email)
	if _, exists := r.emails[key]; exists {
		return nil, ErrEmailTaken
	}
	r.nextUser++
	rec.ID = r.nextUser
	r.users[rec.ID] = &rec
	r.emails[key] = rec.ID

	out := rec
	return &out, nil
}

func (r *InMemoryUserRepository) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.emails[emailKey(email)]
	if !exists {
		return nil, ErrUserNotFound
	}
	out := *r.users[id]
	return &out, nil
}

func (r *InMemoryUserRepository) GetUser(ctx context.Context, id int64) (*UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	out := *rec
	return &out, nil
}

// UpdateUser saves name and phone.
func (r *InMemoryUserRepository) UpdateUser(ctx context.Context, u models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.users[u.ID]
	if !exists {
		return nil, ErrUserNotFound
	}
	rec.Name = u.Name
	rec.Phone = u.Phone
	out := rec.User
	return &out, nil
}

func (r *InMemoryUserRepository) SaveToken(ctx context.Context, token string, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = userID
	return nil
}

func (r *InMemoryUserRepository) UserIDForToken(ctx context.Context, token string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.tokens[token]
	if !exists {
		return 0, ErrTokenNotFound
	}
	return id, nil
}

func (r *InMemoryUserRepository) DeleteToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *InMemoryUserRepository) ListAddresses(ctx context.Context, userID int64) ([]models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Address{}, r.addresses[userID]...), nil
}

func (r *InMemoryUserRepository) GetAddress(ctx context.Context, userID, id int64) (*models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.addresses[userID] {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, ErrAddressNotFound
}

// SaveAddress creates the address when a.ID is zero and replaces it
// otherwise. The first address and any address saved with IsDefault become
// the single default.
func (r *InMemoryUserRepository) SaveAddress(ctx context.Context, userID int64, a models.Address) (*models.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.addresses[userID]
	if a.ID == 0 {
		r.nextAddress++
		a.ID = r.nextAddress
		if len(list) == 0 {
			a.IsDefault = true
		}
		list = append(list, a)
	} else {
		idx := indexOfAddress(list, a.ID)
		if idx < 0 {
			return nil, ErrAddressNotFound
		}
		// unsetting the flag on the default address is ignored
		a.IsDefault = a.IsDefault || list[idx].IsDefault
		list[idx] = a
	}

	if a.IsDefault {
		setDefault(list, a.ID)
	}
	r.addresses[userID] = list
	return &a, nil
}

// DeleteAddress removes the address; if it was the default, the oldest
// remaining address takes over.
func (r *InMemoryUserRepository) DeleteAddress(ctx context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.addresses[userID]
	idx := indexOfAddress(list, id)
	if idx < 0 {
		return ErrAddressNotFound
	}
	wasDefault := list[idx].IsDefault
	list = append(list[:idx], list[idx+1:]...)
	if wasDefault && len(list) > 0 {
		setDefault(list, list[0].ID)
	}
	r.addresses[userID] = list
	return nil
}

func (r *InMemoryUserRepository) SetDefaultAddress(ctx context.Context, userID, id int64) (*models.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.addresses[userID]
	idx := indexOfAddress(list, id)
	if idx < 0 {
		return nil, ErrAddressNotFound
	}
	setDefault(list, id)
	a := list[idx]
	return &a, nil
}

func indexOfAddress(list []models.Address, id int64) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func setDefault(list []models.Address, id int64) {
	for i := range list {
		list[i].IsDefault = list[i].ID == id
	}
}

func (r *InMemoryUserRepository) AddNotification(ctx context.Context, userID int64, n models.Notification) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextNotif++
	n.ID = r.nextNotif
	r.notifications[userID] = append(r.notifications[userID], n)
	return &n, nil
}

// ListNotifications returns newest first.
func (r *InMemoryUserRepository) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	r.mu.RLock()
	list := append([]models.Notification{}, r.notifications[userID]...)
	r.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *InMemoryUserRepository) MarkNotificationRead(ctx context.Context, userID, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.notifications[userID]
	for i := range list {
		if list[i].ID == id {
			if list[i].ReadAt == nil {
				t := at
				list[i].ReadAt = &t
			}
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (r *InMemoryUserRepository) MarkAllNotificationsRead(ctx context.Context, userID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.notifications[userID]
	for i := range list {
		if list[i].ReadAt == nil {
			t := at
			list[i].ReadAt = &t
		}
	}
	return nil
}
