package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

var (
	ErrSKUNotFound           = errors.New("sku not found in inventory")
	ErrInventoryRejected     = errors.New("inventory rejected the request")
	ErrInventoryUnauthorized = errors.New("inventory rejected the credential")
	ErrInventoryUnavailable  = errors.New("inventory service unavailable")
)

// InventoryGateway talks to the inventory authority on behalf of a caller.
// The caller's credential is forwarded as-is.
type InventoryGateway interface {
	CheckAvailability(ctx context.Context, skuCode string, quantity int32, credential auth.Credential) (bool, error)
	Deduct(ctx context.Context, skuCode string, quantity int32, credential auth.Credential) error
}
