package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	orderserver "github.com/Apurer/go-gin-order-service/go"
	ordersevents "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/events"
	ordersworkflows "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/workflows"
	orderports "github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
	platformobservability "github.com/Apurer/go-gin-order-service/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-gin-order-service/internal/platform/temporal"
)

const serviceName = "order-service"

// Run boots the order HTTP API with observability, stores, inventory and workflows wired.
// It returns when ctx is cancelled and the server has drained.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, err := BuildOrderStack(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer stack.Close()

	var orderWorkflows orderports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(stack.Service)
	temporalClient, err := platformtemporal.Dial(platformtemporal.ClientConfig{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
	}, logger, instruments.Tracer("temporal-client"))
	if err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	if len(cfg.KafkaBrokers) > 0 {
		reader := ordersevents.NewKafkaReader(cfg.KafkaBrokers, cfg.LowStockTopic, cfg.LowStockGroup)
		listener := ordersevents.NewLowStockListener(reader,
			ordersevents.WithLogger(logger),
			ordersevents.WithTracer(instruments.Tracer("internal.orders.events")),
			ordersevents.WithMeter(instruments.Meter("internal.orders.events")),
		)
		go func() {
			if err := listener.Run(ctx); err != nil {
				logger.Error("low stock listener stopped", slog.String("error", err.Error()))
			}
		}()
		logger.Info("low stock listener started", slog.String("topic", cfg.LowStockTopic))
	}

	validator, err := BuildValidator(cfg)
	if err != nil {
		return fmt.Errorf("configure credential validation: %w", err)
	}
	gate := auth.NewGate(validator, auth.WithGateLogger(logger))

	checks := make(map[string]orderserver.ReadinessCheck, len(stack.Ready))
	for name, check := range stack.Ready {
		checks[name] = check
	}
	handlers := orderserver.ApiHandleFunctions{
		OrderAPI:  orderserver.NewOrderAPI(stack.Service, orderWorkflows),
		HealthAPI: orderserver.NewHealthAPI(checks),
	}
	routerOpts := []orderserver.RouterOption{
		orderserver.WithMiddleware(
			otelgin.Middleware(serviceName),
			platformobservability.RequestLogger(logger),
			gate.Middleware(),
		),
	}
	if cfg.AuthEnforce {
		routerOpts = append(routerOpts, orderserver.WithProtection(auth.RequirePrincipal()))
	}
	router := orderserver.NewRouter(handlers, routerOpts...)

	return orderserver.Serve(ctx, ":"+cfg.Port, router, logger)
}
