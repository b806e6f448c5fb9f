package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

// statsProvider reports counters for the health endpoint
type statsProvider interface {
	GetStats() map[string]interface{}
}

// HealthHandler provides health check endpoint
type HealthHandler struct {
	coupons statsProvider
	started time.Time
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(coupons statsProvider, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		coupons: coupons,
		started: time.Now(),
		logger:  logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Coupons   map[string]interface{} `json:"coupons,omitempty"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}
	if h.coupons != nil {
		response.Coupons = h.coupons.GetStats()
	}

	WriteJSON(w, http.StatusOK, response, h.logger)
}
