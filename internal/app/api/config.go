package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	ordersevents "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/events"
	ordersapp "github.com/Apurer/go-gin-order-service/internal/domains/orders/application"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

const (
	AuthModeRemote = "remote"
	AuthModeLocal  = "local"
)

// Config carries environment-driven settings for the order API process.
type Config struct {
	Port              string
	PostgresDSN       string
	InventoryBaseURL  string
	IAMBaseURL        string
	AuthMode          string
	AuthEnforce       bool
	Auth              auth.Settings
	RequestTimeout    time.Duration
	Retry             ordersapp.RetryPolicy
	Breaker           ordersapp.BreakerSettings
	RedisAddr         string
	IdempotencyTTL    time.Duration
	KafkaBrokers      []string
	LowStockTopic     string
	LowStockGroup     string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
// Token settings are mandatory: the process refuses to start without them.
func LoadConfig() (Config, error) {
	settings, err := auth.LoadSettings()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		InventoryBaseURL:  envDefault("INVENTORY_BASE_URL", "http://inventory-service:8082"),
		IAMBaseURL:        envDefault("IAM_BASE_URL", "http://iam-service:8083"),
		AuthMode:          strings.ToLower(envDefault("AUTH_MODE", AuthModeRemote)),
		AuthEnforce:       isTruthy(envDefault("AUTH_ENFORCE", "true")),
		Auth:              settings,
		Retry:             ordersapp.DefaultRetryPolicy(),
		Breaker:           ordersapp.DefaultBreakerSettings(),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		KafkaBrokers:      ordersevents.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		LowStockTopic:     envDefault("LOW_STOCK_TOPIC", ordersevents.DefaultLowStockTopic),
		LowStockGroup:     envDefault("LOW_STOCK_GROUP", ordersevents.DefaultLowStockGroup),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	if cfg.AuthMode != AuthModeRemote && cfg.AuthMode != AuthModeLocal {
		return Config{}, fmt.Errorf("AUTH_MODE must be %q or %q", AuthModeRemote, AuthModeLocal)
	}

	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = envDuration("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.Retry.Delay, err = envDuration("RETRY_DELAY", cfg.Retry.Delay); err != nil {
		return Config{}, err
	}
	if cfg.Retry.MaxAttempts, err = envPositiveInt("RETRY_MAX_ATTEMPTS", cfg.Retry.MaxAttempts); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("RETRY_INSUFFICIENT_STOCK")); raw != "" {
		cfg.Retry.RetryInsufficientStock = isTruthy(raw)
	}

	if raw := strings.TrimSpace(os.Getenv("BREAKER_FAILURE_RATIO")); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil || ratio <= 0 || ratio > 1 {
			return Config{}, fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
		}
		cfg.Breaker.FailureRatio = ratio
	}
	minRequests, err := envPositiveInt("BREAKER_MIN_REQUESTS", int(cfg.Breaker.MinimumRequests))
	if err != nil {
		return Config{}, err
	}
	cfg.Breaker.MinimumRequests = uint32(minRequests)
	halfOpen, err := envPositiveInt("BREAKER_HALF_OPEN_REQUESTS", int(cfg.Breaker.HalfOpenRequests))
	if err != nil {
		return Config{}, err
	}
	cfg.Breaker.HalfOpenRequests = uint32(halfOpen)
	if cfg.Breaker.OpenTimeout, err = envDuration("BREAKER_OPEN_TIMEOUT", cfg.Breaker.OpenTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Breaker.Window, err = envDuration("BREAKER_WINDOW", cfg.Breaker.Window); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s must be a non-negative duration", key)
	}
	return d, nil
}

func envPositiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
