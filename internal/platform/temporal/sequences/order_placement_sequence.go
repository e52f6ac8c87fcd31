package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	orderactivities "github.com/Apurer/go-gin-order-service/internal/platform/temporal/activities/orders"
)

// RunOrderPlacementSequence executes the placement activity once. The
// coordinator already retries inventory calls, so Temporal must not add
// a second retry layer on top.
func RunOrderPlacementSequence(ctx workflow.Context, input orderactivities.PlaceOrderActivityInput) (*ordertypes.OrderResponse, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order placement sequence started", "items", len(input.Command.Items))
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}

	var response ordertypes.OrderResponse
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.PlaceOrderActivityName, input).Get(ctx, &response)
	if err != nil {
		logger.Error("order placement sequence failed", "error", err)
		return nil, err
	}
	logger.Info("order placement sequence finished", "orderNumber", response.OrderNumber, "status", response.Status)
	return &response, nil
}
