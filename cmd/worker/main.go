package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-order-service/internal/app/api"
	platformobservability "github.com/Apurer/go-gin-order-service/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-gin-order-service/internal/platform/temporal"
	orderactivities "github.com/Apurer/go-gin-order-service/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-order-service/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "order-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, err := api.BuildOrderStack(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build order service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stack.Close()
	activities := orderactivities.NewActivities(stack.Service)

	temporalClient, err := platformtemporal.Dial(platformtemporal.ClientConfig{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	}, logger, instruments.Tracer("temporal-worker"))
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderPlacementTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderPlacementWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderPlacementWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderPlacementTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
