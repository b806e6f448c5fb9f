package handlers

import (
	"log/slog"
	"net/http"

	"github.com/chriskamgang/MyINSAM-Resto/internal/service"
)

// MenuHandler handles restaurant and menu requests
type MenuHandler struct {
	menuService *service.MenuService
	log         *slog.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menuService *service.MenuService, log *slog.Logger) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
		log:         log,
	}
}

// GetRestaurant handles GET /api/restaurants/{restaurantId}
func (h *MenuHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "restaurantId")
	if err != nil {
		WriteError(w, http.StatusNotFound, "Restaurant not found", h.log)
		return
	}

	restaurant, err := h.menuService.GetRestaurant(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get restaurant", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"restaurant": restaurant}, h.log)
}

// GetMenu handles GET /api/restaurants/{restaurantId}/menu
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "restaurantId")
	if err != nil {
		WriteError(w, http.StatusNotFound, "Restaurant not found", h.log)
		return
	}

	menu, err := h.menuService.GetMenu(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get menu", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, menu, h.log)
}
