package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
)

func placedOrder(t *testing.T, number string) *domain.Order {
	t.Helper()
	item, err := domain.NewItem("SKU-1", 2, decimal.NewFromInt(5))
	require.NoError(t, err)
	order, err := domain.NewOrder(number, []domain.Item{item})
	require.NoError(t, err)
	return order
}

func TestRepository_InsertAssignsVersion(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	saved, err := repo.Save(ctx, placedOrder(t, "ord-1"))
	require.NoError(t, err)
	require.Equal(t, int64(1), saved.Version)
	require.False(t, saved.CreatedAt.IsZero())

	_, err = repo.Save(ctx, placedOrder(t, "ord-1"))
	require.ErrorIs(t, err, ports.ErrDuplicateOrder)
}

func TestRepository_UpdateBumpsVersion(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	saved, err := repo.Save(ctx, placedOrder(t, "ord-1"))
	require.NoError(t, err)

	require.NoError(t, saved.UpdateStatus(domain.StatusShipped))
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	require.Equal(t, int64(2), updated.Version)
	require.Equal(t, saved.CreatedAt, updated.CreatedAt)

	_, err = repo.Save(ctx, saved)
	require.ErrorIs(t, err, ports.ErrVersionConflict)
}

func TestRepository_GetReturnsCopies(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	_, err := repo.Save(ctx, placedOrder(t, "ord-1"))
	require.NoError(t, err)

	first, err := repo.GetByOrderNumber(ctx, "ord-1")
	require.NoError(t, err)
	first.Items[0].Quantity = 99

	second, err := repo.GetByOrderNumber(ctx, "ord-1")
	require.NoError(t, err)
	require.Equal(t, int32(2), second.Items[0].Quantity)

	_, err = repo.GetByOrderNumber(ctx, "missing")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateMissing(t *testing.T) {
	repo := NewRepository()
	order := placedOrder(t, "ord-1")
	order.Version = 3
	_, err := repo.Save(context.Background(), order)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ConcurrentWritersOneWins(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	_, err := repo.Save(ctx, placedOrder(t, "ord-1"))
	require.NoError(t, err)

	a, err := repo.GetByOrderNumber(ctx, "ord-1")
	require.NoError(t, err)
	b, err := repo.GetByOrderNumber(ctx, "ord-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, order := range []*domain.Order{a, b} {
		wg.Add(1)
		go func(i int, order *domain.Order) {
			defer wg.Done()
			_, errs[i] = repo.Save(ctx, order)
		}(i, order)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case err == ports.ErrVersionConflict:
			conflicts++
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, conflicts)
}

func TestIdempotencyStore_SaveAndConflict(t *testing.T) {
	store := NewIdempotencyStore()
	ctx := context.Background()

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h1", OrderNumber: "ord-1"})
	require.NoError(t, err)
	require.False(t, saved.CreatedAt.IsZero())

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h1", OrderNumber: "ord-2"})
	require.NoError(t, err)
	require.Equal(t, "ord-1", again.OrderNumber)

	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h2", OrderNumber: "ord-3"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	missing, err := store.Get(ctx, "other")
	require.NoError(t, err)
	require.Nil(t, missing)
}
