// Package temporal holds the durable order placement workflow, its activities
// and the client bootstrap shared by the API and the worker.
package temporal

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
)

// ErrDisabled is returned by Dial when Temporal has been switched off.
var ErrDisabled = errors.New("temporal disabled via TEMPORAL_DISABLED env")

// ClientConfig selects the Temporal frontend to connect to.
type ClientConfig struct {
	Address   string
	Namespace string
	Disabled  bool
}

// Dial connects to Temporal with structured logging and OpenTelemetry tracing wired.
func Dial(cfg ClientConfig, logger *slog.Logger, tracer trace.Tracer) (client.Client, error) {
	if cfg.Disabled {
		return nil, ErrDisabled
	}
	if cfg.Address == "" {
		cfg.Address = client.DefaultHostPort
	}
	if cfg.Namespace == "" {
		cfg.Namespace = client.DefaultNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{Tracer: tracer})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.Address,
		Namespace: cfg.Namespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
