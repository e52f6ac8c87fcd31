package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/domain"
)

const (
	DefaultLowStockTopic = "low-stock-topic"
	DefaultLowStockGroup = "low-stock-consumer"
)

// MessageReader is the subset of *kafka.Reader the listener consumes.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AlertHandler reacts to a decoded low-stock alert.
type AlertHandler func(ctx context.Context, alert domain.LowStockAlert) error

type lowStockPayload struct {
	SKUCode      string `json:"skuCode"`
	RemainingQty int32  `json:"remainingQty"`
}

// LowStockListener consumes low-stock alerts published by the inventory authority.
// Alerts are informational: they are logged and counted, never acted on.
type LowStockListener struct {
	reader   MessageReader
	logger   *slog.Logger
	tracer   trace.Tracer
	received metric.Int64Counter
	handler  AlertHandler
}

type Option func(*LowStockListener)

func WithLogger(logger *slog.Logger) Option {
	return func(l *LowStockListener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(l *LowStockListener) {
		if tr != nil {
			l.tracer = tr
		}
	}
}

func WithMeter(m metric.Meter) Option {
	return func(l *LowStockListener) {
		if m != nil {
			l.received, _ = m.Int64Counter("orders.low_stock.alerts", metric.WithDescription("Low stock alerts received"))
		}
	}
}

// WithHandler adds a callback invoked after an alert is logged.
func WithHandler(h AlertHandler) Option {
	return func(l *LowStockListener) {
		l.handler = h
	}
}

// NewKafkaReader builds a consumer-group reader for the low-stock topic.
func NewKafkaReader(brokers []string, topic, group string) *kafka.Reader {
	if topic == "" {
		topic = DefaultLowStockTopic
	}
	if group == "" {
		group = DefaultLowStockGroup
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewLowStockListener(reader MessageReader, opts ...Option) *LowStockListener {
	l := &LowStockListener{
		reader: reader,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer("orders-low-stock-listener"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Run fetches and commits messages until ctx is cancelled. Undecodable
// messages are logged and committed so they never block the partition.
func (l *LowStockListener) Run(ctx context.Context) error {
	if l == nil || l.reader == nil {
		return errors.New("low stock listener not configured")
	}
	defer l.reader.Close()
	for {
		msg, err := l.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("fetch low stock alert: %w", err)
		}
		if err := l.Handle(ctx, msg); err != nil {
			l.logger.LogAttrs(ctx, slog.LevelError, "low stock alert rejected",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
		if err := l.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			l.logger.LogAttrs(ctx, slog.LevelWarn, "commit low stock alert failed", slog.String("error", err.Error()))
		}
	}
}

// Handle decodes a single message and records the alert.
func (l *LowStockListener) Handle(ctx context.Context, msg kafka.Message) error {
	ctx = extractHeaders(ctx, msg.Headers)
	ctx, span := l.tracer.Start(ctx, "LowStockListener.Handle")
	defer span.End()

	var payload lowStockPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		span.RecordError(err)
		return fmt.Errorf("decode low stock alert: %w", err)
	}
	alert, err := domain.NewLowStockAlert(payload.SKUCode, payload.RemainingQty)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.String("inventory.sku", alert.SKUCode), attribute.Int("inventory.remaining", int(alert.RemainingQty)))
	l.logger.LogAttrs(ctx, slog.LevelWarn, "low stock alert",
		slog.String("sku", alert.SKUCode),
		slog.Int("remaining", int(alert.RemainingQty)),
	)
	if l.received != nil {
		l.received.Add(ctx, 1, metric.WithAttributes(attribute.String("inventory.sku", alert.SKUCode)))
	}
	if l.handler != nil {
		return l.handler(ctx, alert)
	}
	return nil
}

// ParseBrokers splits a comma separated broker list.
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			brokers = append(brokers, part)
		}
	}
	return brokers
}

func extractHeaders(ctx context.Context, headers []kafka.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
