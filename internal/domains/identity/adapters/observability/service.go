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

	identityports "github.com/Apurer/go-gin-order-service/internal/domains/identity/ports"
)

const tracerName = "github.com/Apurer/go-gin-order-service/internal/domains/identity/adapters/observability/service"

// Service decorates the identity service with tracing, logging, and metrics.
type Service struct {
	inner       identityports.Service
	tracer      trace.Tracer
	logger      *slog.Logger
	logins      metric.Int64Counter
	validations metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.logins, _ = m.Int64Counter("identity.service.logins", metric.WithDescription("Login attempts by outcome"))
		s.validations, _ = m.Int64Counter("identity.service.validations", metric.WithDescription("Token validations by outcome"))
	}
}

// New wraps the core identity service.
func New(inner identityports.Service, opts ...Option) identityports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
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
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Login", trace.WithAttributes(attribute.String("user.name", username)))
	defer span.End()

	token, err := s.inner.Login(ctx, username, password)
	s.count(ctx, s.logins, err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelWarn, "login rejected", slog.String("user", username), slog.String("error", err.Error()))
		return "", err
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "login succeeded", slog.String("user", username))
	return token, nil
}

func (s *Service) Validate(ctx context.Context, token string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Validate")
	defer span.End()

	subject, err := s.inner.Validate(ctx, token)
	s.count(ctx, s.validations, err == nil)
	if err != nil {
		span.RecordError(err)
		s.logger.LogAttrs(ctx, slog.LevelInfo, "token rejected", slog.String("error", err.Error()))
		return "", err
	}
	span.SetAttributes(attribute.String("user.name", subject))
	return subject, nil
}

func (s *Service) count(ctx context.Context, counter metric.Int64Counter, ok bool) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", ok)))
}

var _ identityports.Service = (*Service)(nil)
