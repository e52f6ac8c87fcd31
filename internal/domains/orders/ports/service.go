package ports

import (
	"context"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

// Service exposes order use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input types.PlaceOrderInput, credential auth.Credential) (*types.OrderResponse, error)
	GetOrder(ctx context.Context, orderNumber string) (*types.OrderResponse, error)
	UpdateOrder(ctx context.Context, orderNumber string, input types.UpdateOrderInput) (*types.OrderResponse, error)
}
