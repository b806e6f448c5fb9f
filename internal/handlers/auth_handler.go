package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/chriskamgang/MyINSAM-Resto/internal/middleware"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/repository"
	"github.com/chriskamgang/MyINSAM-Resto/internal/service"
)

// AuthHandler handles registration, login and the current user
type AuthHandler struct {
	authService *service.AuthService
	log         *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "register", h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, resp, h.log)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "login", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, resp, h.log)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.authService.Logout(r.Context(), middleware.TokenFromContext(r.Context()))
	if err != nil && !errors.Is(err, repository.ErrTokenNotFound) {
		writeServiceError(w, err, "logout", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Logged out"}, h.log)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{"user": middleware.UserFromContext(r.Context())}, h.log)
}
