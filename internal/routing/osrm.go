// Package routing estimates delivery times, either from an OSRM routing
// server or from straight-line distance.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

const DefaultOSRMURL = "https://router.project-osrm.org"

const (
	// breakerFailures consecutive failures open the breaker for breakerCooldown.
	breakerFailures = 3
	breakerCooldown = 30 * time.Second
)

// OSRM queries the route service of an OSRM server. Repeated failures open a
// circuit breaker so checkout stops waiting on a server that is down.
type OSRM struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewOSRM creates a client for baseURL. A zero timeout means 10 seconds.
func NewOSRM(baseURL string, timeout time.Duration, logger *slog.Logger) *OSRM {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OSRM{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "osrm",
			Timeout: breakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Info("route service breaker changed state", "from", from.String(), "to", to.String())
			},
		}),
		logger: logger,
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

// DeliveryMinutes returns the driving time between two points rounded up to
// whole minutes. Any failure yields ok=false; callers never block on it.
func (o *OSRM) DeliveryMinutes(ctx context.Context, from, to models.Coordinates) (int, bool) {
	v, err := o.breaker.Execute(func() (interface{}, error) {
		return o.duration(ctx, from, to)
	})
	if err != nil {
		o.logger.Debug("route estimate unavailable", "error", err)
		return 0, false
	}
	return int(math.Ceil(v.(float64) / 60)), true
}

func (o *OSRM) duration(ctx context.Context, from, to models.Coordinates) (float64, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		o.baseURL, from.Longitude, from.Latitude, to.Longitude, to.Latitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("route request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode route: %w", err)
	}
	if body.Code != "" && body.Code != "Ok" {
		return 0, fmt.Errorf("route service answered %q", body.Code)
	}
	if len(body.Routes) == 0 {
		return 0, fmt.Errorf("no route")
	}
	return body.Routes[0].Duration, nil
}
