package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server     ServerConfig
	Client     ClientConfig
	Restaurant RestaurantConfig
	Polling    PollingConfig
	Routing    RoutingConfig
	Session    SessionConfig
	Coupon     CouponConfig
	Sandbox    SandboxConfig
	LogLevel   string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	AuthPerMinute   int
	AuthBurst       int
}

// ClientConfig configures the REST client used by the ordering core.
type ClientConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type RestaurantConfig struct {
	ID          int64
	Latitude    float64
	Longitude   float64
	DeliveryFee int64
	PrepTime    time.Duration
}

type PollingConfig struct {
	PaymentInterval  time.Duration
	TrackingInterval time.Duration
}

type RoutingConfig struct {
	OSRMURL string
}

type SessionConfig struct {
	Store    string // "file", "redis" or "memory"
	FilePath string
	RedisURL string
}

type CouponConfig struct {
	Files []string // local paths or http(s) URLs, plain or gzip
}

type SandboxConfig struct {
	// Routes mounts the manual /api/sandbox endpoints.
	Routes bool
	// Tick drives the lifecycle simulator; zero disables it.
	Tick time.Duration
}

// LoadDotEnv loads a .env file from the working directory outside production.
// A missing file is not an error.
func LoadDotEnv() error {
	if os.Getenv("ENV") == "production" {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8002"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
			AuthPerMinute:   getEnvAsInt("AUTH_RATE_PER_MINUTE", 20),
			AuthBurst:       getEnvAsInt("AUTH_RATE_BURST", 5),
		},
		Client: ClientConfig{
			BaseURL:        getEnv("API_BASE_URL", "http://localhost:8002/api"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Second),
		},
		Restaurant: RestaurantConfig{
			ID:          int64(getEnvAsInt("RESTAURANT_ID", 1)),
			Latitude:    getEnvAsFloat("RESTAURANT_LAT", 5.4720),
			Longitude:   getEnvAsFloat("RESTAURANT_LON", 10.4180),
			DeliveryFee: int64(getEnvAsInt("DELIVERY_FEE", 500)),
			PrepTime:    getEnvAsDuration("PREP_TIME", 20*time.Minute),
		},
		Polling: PollingConfig{
			PaymentInterval:  getEnvAsDuration("PAYMENT_POLL_INTERVAL", 5*time.Second),
			TrackingInterval: getEnvAsDuration("TRACKING_POLL_INTERVAL", 10*time.Second),
		},
		Routing: RoutingConfig{
			OSRMURL: getEnv("OSRM_URL", "https://router.project-osrm.org"),
		},
		Session: SessionConfig{
			Store:    strings.ToLower(getEnv("SESSION_STORE", "file")),
			FilePath: getEnv("SESSION_FILE", defaultSessionFile()),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Coupon: CouponConfig{
			Files: getEnvAsSlice("COUPON_FILES", nil),
		},
		Sandbox: SandboxConfig{
			Routes: getEnvAsBool("SANDBOX_ROUTES", true),
			Tick:   getEnvAsDuration("SANDBOX_TICK", 0),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	u, err := url.Parse(c.Client.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL: %q", c.Client.BaseURL)
	}

	if c.Client.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.Restaurant.DeliveryFee < 0 {
		return fmt.Errorf("DELIVERY_FEE must not be negative")
	}

	if c.Restaurant.PrepTime < 0 {
		return fmt.Errorf("PREP_TIME must not be negative")
	}

	if c.Polling.PaymentInterval <= 0 || c.Polling.TrackingInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}

	switch c.Session.Store {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("invalid session store: %s (must be file, redis or memory)", c.Session.Store)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "myinsam-resto", "session.json")
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("5s", "250ms") or a plain number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
