package orders

import (
	"errors"

	"go.temporal.io/sdk/temporal"

	ordersapp "github.com/Apurer/go-gin-order-service/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
)

// Application error types carried across the Temporal boundary. Temporal
// rebuilds failures from text, so sentinel identity only survives as a type.
const (
	ErrorTypeInvalidInput          = "InvalidInput"
	ErrorTypeNotFound              = "NotFound"
	ErrorTypeVersionConflict       = "VersionConflict"
	ErrorTypeDuplicateOrder        = "DuplicateOrder"
	ErrorTypeIdempotencyConflict   = "IdempotencyConflict"
	ErrorTypeSKUNotFound           = "SKUNotFound"
	ErrorTypeInsufficientStock     = "InsufficientStock"
	ErrorTypeInventoryRejected     = "InventoryRejected"
	ErrorTypeInventoryUnauthorized = "InventoryUnauthorized"
	ErrorTypeInventoryUnavailable  = "InventoryUnavailable"
	ErrorTypeCircuitOpen           = "CircuitOpen"
)

type errorKind struct {
	typ      string
	sentinel error
}

// Checked in order; InvalidInput comes first because it wraps domain causes.
var errorKinds = []errorKind{
	{ErrorTypeInvalidInput, ordersapp.ErrInvalidInput},
	{ErrorTypeNotFound, orderports.ErrNotFound},
	{ErrorTypeVersionConflict, orderports.ErrVersionConflict},
	{ErrorTypeDuplicateOrder, orderports.ErrDuplicateOrder},
	{ErrorTypeIdempotencyConflict, orderports.ErrIdempotencyConflict},
	{ErrorTypeSKUNotFound, orderports.ErrSKUNotFound},
	{ErrorTypeInsufficientStock, ordersapp.ErrInsufficientStock},
	{ErrorTypeInventoryRejected, orderports.ErrInventoryRejected},
	{ErrorTypeInventoryUnauthorized, orderports.ErrInventoryUnauthorized},
	{ErrorTypeInventoryUnavailable, orderports.ErrInventoryUnavailable},
	{ErrorTypeCircuitOpen, ordersapp.ErrCircuitOpen},
}

// EncodeError turns a known coordinator error into a non-retryable
// application error typed after its sentinel. Unknown errors pass through.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range errorKinds {
		if errors.Is(err, kind.sentinel) {
			return temporal.NewNonRetryableApplicationError(err.Error(), kind.typ, err)
		}
	}
	return err
}

// DecodeError restores the sentinel behind an application error produced by
// EncodeError, keeping the original message.
func DecodeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, kind := range errorKinds {
		if appErr.Type() == kind.typ {
			return &decodedError{message: appErr.Message(), sentinel: kind.sentinel}
		}
	}
	return err
}

type decodedError struct {
	message  string
	sentinel error
}

func (e *decodedError) Error() string { return e.message }

func (e *decodedError) Unwrap() error { return e.sentinel }
