package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/domain"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrVersionConflict = errors.New("order was modified concurrently")
	ErrDuplicateOrder  = errors.New("order number already exists")
)

// Repository persists the order aggregate. Save inserts when Version is zero
// and otherwise updates only if the stored version still matches, returning
// ErrVersionConflict when it does not. Header and items are written atomically.
type Repository interface {
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
}
