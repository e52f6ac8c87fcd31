package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

const tracerName = "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// PlaceOrder records placements and fallbacks separately. The credential is never logged.
func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput, credential auth.Credential) (*ordertypes.OrderResponse, error) {
	ctx, span := s.startSpan(ctx, "Service.PlaceOrder",
		attribute.Int("order.items.count", len(input.Items)),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	)
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int("items", len(input.Items)))
	result, err := s.inner.PlaceOrder(ctx, input, credential)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order")
	}
	if result == nil {
		return nil, nil
	}
	span.SetAttributes(attribute.String("order.number", result.OrderNumber), attribute.String("order.status", result.Status))
	if result.IsFallback() {
		span.SetStatus(codes.Error, result.FailureReason)
		s.metrics.recordFallback(ctx, result.FailureReason)
		s.logWarn(ctx, "order placement degraded", slog.String("reason", result.FailureReason), slog.String("message", result.Message))
		return result, nil
	}
	s.metrics.recordPlaced(ctx, len(result.DeductionFailures))
	s.logInfo(ctx, "order placed",
		slog.String("order.number", result.OrderNumber),
		slog.String("total", result.Total.String()),
		slog.Int("deduction_failures", len(result.DeductionFailures)),
	)
	return result, nil
}

// GetOrder loads a single order.
func (s *Service) GetOrder(ctx context.Context, orderNumber string) (*ordertypes.OrderResponse, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.number", orderNumber))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.number", orderNumber))
	}
	return result, nil
}

// UpdateOrder applies changes to an existing order.
func (s *Service) UpdateOrder(ctx context.Context, orderNumber string, input ordertypes.UpdateOrderInput) (*ordertypes.OrderResponse, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateOrder",
		attribute.String("order.number", orderNumber),
		attribute.Bool("order.items.replaced", len(input.Items) > 0),
	)
	defer span.End()

	s.logInfo(ctx, "updating order", slog.String("order.number", orderNumber))
	result, err := s.inner.UpdateOrder(ctx, orderNumber, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order", slog.String("order.number", orderNumber))
	}
	if result != nil {
		s.metrics.recordUpdated(ctx, result.Status)
		s.logInfo(ctx, "order updated",
			slog.String("order.number", result.OrderNumber),
			slog.String("status", result.Status),
			slog.Int64("version", result.Version),
		)
	}
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	placed    metric.Int64Counter
	fallbacks metric.Int64Counter
	updated   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	fallbacks, _ := m.Int64Counter("orders.service.fallbacks", metric.WithDescription("Number of placements answered by the fallback"))
	updated, _ := m.Int64Counter("orders.service.updated", metric.WithDescription("Number of orders updated"))
	return serviceMetrics{placed: placed, fallbacks: fallbacks, updated: updated}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, deductionFailures int) {
	addCounter(ctx, m.placed, 1, attribute.Bool("order.deduction_failed", deductionFailures > 0))
}

func (m serviceMetrics) recordFallback(ctx context.Context, reason string) {
	addCounter(ctx, m.fallbacks, 1, attribute.String("order.failure_reason", reason))
}

func (m serviceMetrics) recordUpdated(ctx context.Context, status string) {
	addCounter(ctx, m.updated, 1, attribute.String("order.status", status))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
