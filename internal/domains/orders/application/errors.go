package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrInsufficientStock matches any InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrCircuitOpen is returned while the inventory breaker rejects calls.
	ErrCircuitOpen = errors.New("inventory circuit open")
)

// InsufficientStockError names the first SKU the inventory could not cover.
type InsufficientStockError struct {
	SKUCode string
}

func (e *InsufficientStockError) Error() string {
	return "Insufficient stock for SKU: " + e.SKUCode
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyOrderNumber) ||
		errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrEmptySKU) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
