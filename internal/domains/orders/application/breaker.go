package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

// BreakerSettings configures the inventory circuit breaker.
type BreakerSettings struct {
	Name string
	// FailureRatio trips the breaker once reached within the counting window.
	FailureRatio float64
	// MinimumRequests must be seen in the window before the ratio is evaluated.
	MinimumRequests uint32
	// Window clears closed-state counts periodically. Zero never clears them.
	Window time.Duration
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests bounds the probes admitted while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerSettings mirrors the production defaults.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:             "inventory",
		FailureRatio:     0.5,
		MinimumRequests:  10,
		Window:           time.Minute,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 3,
	}
}

// guardedInventory routes every inventory call through one shared breaker.
// Only downstream-unavailable errors count as failures; business rejections
// such as an unknown SKU leave the breaker alone.
type guardedInventory struct {
	inner   ports.InventoryGateway
	breaker *gobreaker.CircuitBreaker
}

func newGuardedInventory(inner ports.InventoryGateway, settings BreakerSettings, logger *slog.Logger, transitions metric.Int64Counter) *guardedInventory {
	minimum := settings.MinimumRequests
	ratio := settings.FailureRatio
	st := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.HalfOpenRequests,
		Interval:    settings.Window,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minimum || counts.Requests == 0 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ports.ErrInventoryUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("inventory circuit breaker state changed",
					slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
			}
			if transitions != nil {
				transitions.Add(context.Background(), 1, metric.WithAttributes(
					attribute.String("breaker", name), attribute.String("state", to.String())))
			}
		},
	}
	return &guardedInventory{inner: inner, breaker: gobreaker.NewCircuitBreaker(st)}
}

func (g *guardedInventory) CheckAvailability(ctx context.Context, skuCode string, quantity int32, credential auth.Credential) (bool, error) {
	result, err := g.breaker.Execute(func() (any, error) {
		return g.inner.CheckAvailability(ctx, skuCode, quantity, credential)
	})
	if err != nil {
		return false, translateBreakerError(err)
	}
	available, _ := result.(bool)
	return available, nil
}

func (g *guardedInventory) Deduct(ctx context.Context, skuCode string, quantity int32, credential auth.Credential) error {
	_, err := g.breaker.Execute(func() (any, error) {
		return nil, g.inner.Deduct(ctx, skuCode, quantity, credential)
	})
	return translateBreakerError(err)
}

// State exposes the breaker state for diagnostics.
func (g *guardedInventory) State() gobreaker.State {
	return g.breaker.State()
}

func translateBreakerError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return err
}

var _ ports.InventoryGateway = (*guardedInventory)(nil)
