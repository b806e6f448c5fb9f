package handlers

import (
	"log/slog"
	"net/http"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/service"
)

// ProfileHandler handles the profile, saved addresses and notifications
type ProfileHandler struct {
	profileService *service.ProfileService
	log            *slog.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log,
	}
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.profileService.GetProfile(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, err, "get profile", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user}, h.log)
}

// UpdateProfile handles PUT /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	user, err := h.profileService.UpdateProfile(r.Context(), currentUserID(r), req)
	if err != nil {
		writeServiceError(w, err, "update profile", h.log)
		return
	}
	WriteMessage(w, http.StatusOK, "Profile updated", "user", user, h.log)
}

// ListAddresses handles GET /api/profile/addresses
func (h *ProfileHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.profileService.ListAddresses(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, err, "list addresses", h.log)
		return
	}
	if addrs == nil {
		addrs = []models.Address{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"addresses": addrs}, h.log)
}

// CreateAddress handles POST /api/profile/addresses
func (h *ProfileHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var in models.AddressInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	addr, err := h.profileService.CreateAddress(r.Context(), currentUserID(r), in)
	if err != nil {
		writeServiceError(w, err, "create address", h.log)
		return
	}
	WriteMessage(w, http.StatusCreated, "Address saved", "address", addr, h.log)
}

// UpdateAddress handles PUT /api/profile/addresses/{addressId}
func (h *ProfileHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "addressId")
	if err != nil {
		writeServiceError(w, service.ErrAddressNotFound, "update address", h.log)
		return
	}

	var in models.AddressInput
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	addr, err := h.profileService.UpdateAddress(r.Context(), currentUserID(r), id, in)
	if err != nil {
		writeServiceError(w, err, "update address", h.log)
		return
	}
	WriteMessage(w, http.StatusOK, "Address updated", "address", addr, h.log)
}

// DeleteAddress handles DELETE /api/profile/addresses/{addressId}
func (h *ProfileHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "addressId")
	if err != nil {
		writeServiceError(w, service.ErrAddressNotFound, "delete address", h.log)
		return
	}

	if err := h.profileService.DeleteAddress(r.Context(), currentUserID(r), id); err != nil {
		writeServiceError(w, err, "delete address", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Address deleted"}, h.log)
}

// SetDefaultAddress handles POST /api/profile/addresses/{addressId}/default
func (h *ProfileHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "addressId")
	if err != nil {
		writeServiceError(w, service.ErrAddressNotFound, "set default address", h.log)
		return
	}

	addr, err := h.profileService.SetDefaultAddress(r.Context(), currentUserID(r), id)
	if err != nil {
		writeServiceError(w, err, "set default address", h.log)
		return
	}
	WriteMessage(w, http.StatusOK, "Default address updated", "address", addr, h.log)
}

// ListNotifications handles GET /api/notifications
func (h *ProfileHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.profileService.ListNotifications(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, err, "list notifications", h.log)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"notifications": list}, h.log)
}

// MarkNotificationRead handles POST /api/notifications/{notificationId}/read
func (h *ProfileHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "notificationId")
	if err != nil {
		writeServiceError(w, service.ErrNotificationNotFound, "mark notification read", h.log)
		return
	}

	if err := h.profileService.MarkNotificationRead(r.Context(), currentUserID(r), id); err != nil {
		writeServiceError(w, err, "mark notification read", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Notification marked as read"}, h.log)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (h *ProfileHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.profileService.MarkAllNotificationsRead(r.Context(), currentUserID(r)); err != nil {
		writeServiceError(w, err, "mark all notifications read", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "All notifications marked as read"}, h.log)
}
