package orders

import (
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	orderactivities "github.com/Apurer/go-gin-order-service/internal/platform/temporal/activities/orders"
	"github.com/Apurer/go-gin-order-service/internal/platform/temporal/sequences"
)

const (
	// OrderPlacementWorkflowName is the public identifier for registering the workflow.
	OrderPlacementWorkflowName = "orders.workflows.Placement"
	// OrderPlacementTaskQueue is the queue consumed by the worker processing order workflows.
	OrderPlacementTaskQueue = "ORDER_PLACEMENT"
)

// OrderPlacementWorkflowInput captures the placement command and trace context.
type OrderPlacementWorkflowInput struct {
	Command orderactivities.PlaceOrderActivityInput
	TraceID string
}

// OrderPlacementWorkflow runs a placement durably.
func OrderPlacementWorkflow(ctx workflow.Context, input OrderPlacementWorkflowInput) (*ordertypes.OrderResponse, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("OrderPlacementWorkflow started", withTraceID(input.TraceID)...)
	response, err := sequences.RunOrderPlacementSequence(ctx, input.Command)
	if err != nil {
		logger.Error("OrderPlacementWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return nil, err
	}
	logger.Info("OrderPlacementWorkflow completed", withTraceID(input.TraceID, "orderNumber", response.OrderNumber)...)
	return response, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
