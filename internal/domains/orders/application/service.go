package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

const (
	MessageOrderPlaced          = "Order placed successfully"
	MessageOrderFetched         = "Fetched successfully"
	MessageOrderUpdated         = "Order updated successfully"
	MessageInventoryUnavailable = "Inventory temporarily unavailable. Please retry."
)

// RetryPolicy bounds placement attempts. Attempts are spaced by a fixed delay.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	// RetryInsufficientStock treats a stock shortfall as transient. When off,
	// a shortfall goes straight to the fallback.
	RetryInsufficientStock bool
}

// DefaultRetryPolicy is three attempts one second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: time.Second, RetryInsufficientStock: true}
}

// Service coordinates order placement against the inventory authority and the order store.
type Service struct {
	repo           ports.Repository
	inventory      ports.InventoryGateway
	idempotency    ports.IdempotencyStore
	logger         *slog.Logger
	meter          metric.Meter
	now            func() time.Time
	newOrderNumber func() string
	retry          RetryPolicy
	breaker        BreakerSettings
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMeter records breaker transitions.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.meter = m
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithOrderNumberGenerator(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newOrderNumber = next
		}
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(s *Service) {
		if policy.MaxAttempts < 1 {
			policy.MaxAttempts = 1
		}
		if policy.Delay < 0 {
			policy.Delay = 0
		}
		s.retry = policy
	}
}

func WithBreakerSettings(settings BreakerSettings) Option {
	return func(s *Service) {
		s.breaker = settings
	}
}

// WithIdempotencyStore enables replay of placements that carry an idempotency key.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// NewService wires the coordinator. The inventory gateway is wrapped in a
// circuit breaker shared by every call this service makes.
func NewService(repo ports.Repository, inventory ports.InventoryGateway, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		now:            time.Now,
		newOrderNumber: uuid.NewString,
		retry:          DefaultRetryPolicy(),
		breaker:        DefaultBreakerSettings(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	var transitions metric.Int64Counter
	if s.meter != nil {
		transitions, _ = s.meter.Int64Counter("orders.inventory.breaker_transitions", metric.WithDescription("Inventory circuit breaker state changes"))
	}
	s.inventory = newGuardedInventory(inventory, s.breaker, s.logger, transitions)
	return s
}

// PlaceOrder verifies stock for every line, persists the order as PLACED and
// then deducts stock. The whole sequence is retried on transient failures;
// once retries are exhausted, or the breaker is open, a fallback response is
// returned instead of an error. Deductions are never compensated: a failed
// deduction after persistence is reported on the response and logged.
func (s *Service) PlaceOrder(ctx context.Context, input types.PlaceOrderInput, credential auth.Credential) (*types.OrderResponse, error) {
	items, err := buildItems(input.Items)
	if err != nil {
		return nil, mapError(err)
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		fingerprint, err = FingerprintPlaceOrder(input)
		if err != nil {
			return nil, err
		}
		replayed, err := s.replay(ctx, key, fingerprint)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	var placed *types.OrderResponse
	attempt := 0
	operation := func() error {
		attempt++
		result, err := s.attemptPlacement(ctx, items, credential)
		if err != nil {
			if s.isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		placed = result
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.log(ctx, slog.LevelWarn, "order placement attempt failed, retrying",
			slog.Int("attempt", attempt), slog.Duration("retryIn", wait), slog.String("error", err.Error()))
	}
	if err := backoff.RetryNotify(operation, s.retryBackOff(ctx), notify); err != nil {
		if fallback, ok := fallbackResponse(err); ok {
			s.log(ctx, slog.LevelWarn, "order placement fell back",
				slog.Int("attempts", attempt), slog.String("reason", fallback.FailureReason), slog.String("error", err.Error()))
			return fallback, nil
		}
		return nil, mapError(err)
	}

	if key != "" && s.idempotency != nil {
		return s.remember(ctx, key, fingerprint, placed)
	}
	return placed, nil
}

// GetOrder loads an order and recomputes its total. It is never retried.
func (s *Service) GetOrder(ctx context.Context, orderNumber string) (*types.OrderResponse, error) {
	order, err := s.repo.GetByOrderNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, mapError(err)
	}
	return toResponse(order, MessageOrderFetched), nil
}

// UpdateOrder applies status and item changes under optimistic concurrency.
// It never talks to the inventory authority.
func (s *Service) UpdateOrder(ctx context.Context, orderNumber string, input types.UpdateOrderInput) (*types.OrderResponse, error) {
	order, err := s.repo.GetByOrderNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, mapError(err)
	}
	if input.ExpectedVersion != nil && *input.ExpectedVersion != order.Version {
		return nil, fmt.Errorf("%w: expected version %d, found %d", ports.ErrVersionConflict, *input.ExpectedVersion, order.Version)
	}
	if input.Status != nil {
		status, err := domain.ParseStatus(*input.Status)
		if err != nil {
			return nil, mapError(err)
		}
		if err := order.UpdateStatus(status); err != nil {
			return nil, mapError(err)
		}
	}
	if len(input.Items) > 0 {
		items, err := buildItems(input.Items)
		if err != nil {
			return nil, mapError(err)
		}
		if err := order.ReplaceItems(items); err != nil {
			return nil, mapError(err)
		}
	}
	order.Touch(s.now())
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	return toResponse(saved, MessageOrderUpdated), nil
}

// attemptPlacement runs one check → persist → deduct pass with a fresh order number.
func (s *Service) attemptPlacement(ctx context.Context, items []domain.Item, credential auth.Credential) (*types.OrderResponse, error) {
	for _, item := range items {
		available, err := s.inventory.CheckAvailability(ctx, item.SKUCode, item.Quantity, credential)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, &InsufficientStockError{SKUCode: item.SKUCode}
		}
	}

	order, err := domain.NewOrder(s.newOrderNumber(), items)
	if err != nil {
		return nil, mapError(err)
	}
	if err := order.MarkPlaced(s.now()); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, err
	}

	response := toResponse(saved, MessageOrderPlaced)
	response.DeductionFailures = s.deductAll(ctx, saved, credential)
	return response, nil
}

func (s *Service) deductAll(ctx context.Context, order *domain.Order, credential auth.Credential) []types.DeductionFailure {
	var failures []types.DeductionFailure
	for _, item := range order.Items {
		if err := s.inventory.Deduct(ctx, item.SKUCode, item.Quantity, credential); err != nil {
			s.log(ctx, slog.LevelError, "stock deduction failed after order was persisted",
				slog.String("order.number", order.OrderNumber),
				slog.String("sku", item.SKUCode),
				slog.Int("quantity", int(item.Quantity)),
				slog.String("error", err.Error()))
			failures = append(failures, types.DeductionFailure{SKUCode: item.SKUCode, Reason: err.Error()})
		}
	}
	return failures
}

// isTransient classifies failures for the retry loop.
func (s *Service) isTransient(err error) bool {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return s.retry.RetryInsufficientStock
	case errors.Is(err, ErrCircuitOpen):
		return false
	case errors.Is(err, ports.ErrInventoryUnavailable):
		return true
	case errors.Is(err, ports.ErrDuplicateOrder):
		// a fresh order number is drawn on the next attempt
		return true
	default:
		return false
	}
}

func (s *Service) retryBackOff(ctx context.Context) backoff.BackOff {
	retries := s.retry.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retry.Delay), uint64(retries)),
		ctx,
	)
}

func (s *Service) replay(ctx context.Context, key, fingerprint string) (*types.OrderResponse, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != fingerprint {
		return nil, ports.ErrIdempotencyConflict
	}
	order, err := s.repo.GetByOrderNumber(ctx, record.OrderNumber)
	if err != nil {
		return nil, mapError(err)
	}
	s.log(ctx, slog.LevelInfo, "replaying idempotent order placement", slog.String("order.number", order.OrderNumber))
	return toResponse(order, MessageOrderPlaced), nil
}

func (s *Service) remember(ctx context.Context, key, fingerprint string, placed *types.OrderResponse) (*types.OrderResponse, error) {
	stored, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: fingerprint,
		OrderNumber: placed.OrderNumber,
	})
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.OrderNumber != placed.OrderNumber {
		// a concurrent request with the same key won the race
		s.log(ctx, slog.LevelWarn, "idempotency key already bound to another order",
			slog.String("order.number", placed.OrderNumber), slog.String("bound.order.number", stored.OrderNumber))
		return s.replay(ctx, key, fingerprint)
	}
	return placed, nil
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

func fallbackResponse(err error) (*types.OrderResponse, bool) {
	var shortage *InsufficientStockError
	switch {
	case errors.As(err, &shortage):
		return &types.OrderResponse{
			OrderNumber:   types.FallbackOrderNumber,
			Status:        string(domain.StatusFailed),
			Message:       shortage.Error(),
			FailureReason: types.FailureInsufficientStock,
		}, true
	case errors.Is(err, ErrCircuitOpen), errors.Is(err, ports.ErrInventoryUnavailable):
		return &types.OrderResponse{
			OrderNumber:   types.FallbackOrderNumber,
			Status:        string(domain.StatusFailed),
			Message:       MessageInventoryUnavailable,
			FailureReason: types.FailureInventoryUnavailable,
		}, true
	default:
		return nil, false
	}
}

func buildItems(inputs []types.ItemInput) ([]domain.Item, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrNoItems
	}
	items := make([]domain.Item, 0, len(inputs))
	for _, in := range inputs {
		item, err := domain.NewItem(in.SKUCode, in.Quantity, in.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

var _ ports.Service = (*Service)(nil)
