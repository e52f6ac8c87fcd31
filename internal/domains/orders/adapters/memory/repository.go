package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. Versions are compared
// and bumped under the write lock, which makes Save a compare-and-swap.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	clone := order.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[clone.OrderNumber]
	if clone.Version == 0 {
		if ok {
			return nil, ports.ErrDuplicateOrder
		}
		now := r.now()
		if clone.CreatedAt.IsZero() {
			clone.CreatedAt = now
		}
		if clone.UpdatedAt.IsZero() {
			clone.UpdatedAt = clone.CreatedAt
		}
		clone.Version = 1
	} else {
		if !ok {
			return nil, ports.ErrNotFound
		}
		if existing.Version != clone.Version {
			return nil, ports.ErrVersionConflict
		}
		clone.CreatedAt = existing.CreatedAt
		clone.Version = existing.Version + 1
	}
	r.orders[clone.OrderNumber] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByOrderNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[orderNumber]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

// Len reports how many orders are stored.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
