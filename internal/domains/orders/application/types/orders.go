package types

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// FallbackOrderNumber marks a response that did not create an order.
	FallbackOrderNumber = "N/A"

	FailureInsufficientStock    = "INSUFFICIENT_STOCK"
	FailureInventoryUnavailable = "INVENTORY_UNAVAILABLE"
)

// ItemInput is a requested order line.
type ItemInput struct {
	SKUCode  string
	Quantity int32
	Price    decimal.Decimal
}

// PlaceOrderInput carries the placement command. IdempotencyKey is optional.
type PlaceOrderInput struct {
	Items          []ItemInput
	IdempotencyKey string
}

// UpdateOrderInput applies optional changes. A nil Status or empty Items leaves
// the respective field untouched. ExpectedVersion, when set, must match the
// stored version.
type UpdateOrderInput struct {
	Status          *string
	Items           []ItemInput
	ExpectedVersion *int64
}

// ItemView is an order line with its computed total.
type ItemView struct {
	SKUCode   string
	Quantity  int32
	Price     decimal.Decimal
	LineTotal decimal.Decimal
}

// DeductionFailure records a post-persistence deduction that did not succeed.
type DeductionFailure struct {
	SKUCode string
	Reason  string
}

// OrderResponse is the read model returned by every order use case.
type OrderResponse struct {
	OrderNumber       string
	Status            string
	Message           string
	Total             decimal.Decimal
	Items             []ItemView
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
	FailureReason     string
	DeductionFailures []DeductionFailure
}

// IsFallback reports whether the response is a degraded placement result.
func (r *OrderResponse) IsFallback() bool {
	return r != nil && r.OrderNumber == FallbackOrderNumber
}
