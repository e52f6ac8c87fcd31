package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	orderports "github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

// PlaceOrderActivityName runs the coordinator's placement flow.
const PlaceOrderActivityName = "orders.activities.PlaceOrder"

// PlaceOrderActivityInput carries the command plus the caller's credential,
// which the coordinator forwards to the inventory authority.
type PlaceOrderActivityInput struct {
	Command    ordertypes.PlaceOrderInput
	Credential auth.Credential
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder delegates to the coordinator. Fallback responses are results,
// not failures, so the workflow sees them as completed. Known coordinator
// errors fail the activity as non-retryable typed application errors.
func (a *Activities) PlaceOrder(ctx context.Context, input PlaceOrderActivityInput) (*ordertypes.OrderResponse, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order placement activity not initialized")
		return nil, errors.New("order placement activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "items", len(input.Command.Items))
	response, err := a.service.PlaceOrder(ctx, input.Command, input.Credential)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("PlaceOrder activity completed", "orderNumber", response.OrderNumber, "status", response.Status)
	return response, nil
}
