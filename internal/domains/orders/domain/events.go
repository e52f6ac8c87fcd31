package domain

import (
	"errors"
	"strings"
)

var ErrInvalidLowStockAlert = errors.New("low stock alert requires a sku code")

// LowStockAlert is published by the inventory authority when a SKU drops
// below its threshold.
type LowStockAlert struct {
	SKUCode      string
	RemainingQty int32
}

// NewLowStockAlert validates an inbound alert.
func NewLowStockAlert(skuCode string, remaining int32) (LowStockAlert, error) {
	skuCode = strings.TrimSpace(skuCode)
	if skuCode == "" {
		return LowStockAlert{}, ErrInvalidLowStockAlert
	}
	return LowStockAlert{SKUCode: skuCode, RemainingQty: remaining}, nil
}
