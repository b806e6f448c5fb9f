package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Address is a saved delivery address. At most one is the default.
type Address struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	Address   string `json:"address"`
	Latitude  *Float `json:"latitude,omitempty"`
	Longitude *Float `json:"longitude,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsDefault bool   `json:"is_default"`
}

// Coordinates returns the address position when both components are set.
func (a Address) Coordinates() (Coordinates, bool) {
	if a.Latitude == nil || a.Longitude == nil {
		return Coordinates{}, false
	}
	c := Coordinates{Latitude: *a.Latitude, Longitude: *a.Longitude}
	if c.IsZero() {
		return Coordinates{}, false
	}
	return c, true
}

type AddressInput struct {
	Label     string `json:"label"`
	Address   string `json:"address"`
	Latitude  *Float `json:"latitude,omitempty"`
	Longitude *Float `json:"longitude,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsDefault bool   `json:"is_default"`
}

type Notification struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type,omitempty"`
	OrderID   *int64     `json:"order_id,omitempty"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// MessageResponse is the generic {message} body.
type MessageResponse struct {
	Message string `json:"message"`
}
