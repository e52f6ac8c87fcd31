package ports

import (
	"context"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

// WorkflowOrchestrator runs order placement either inline or durably.
type WorkflowOrchestrator interface {
	PlaceOrder(ctx context.Context, input types.PlaceOrderInput, credential auth.Credential) (*types.OrderResponse, error)
}
