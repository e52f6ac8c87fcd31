package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
)

type normalizedPlaceOrderInput struct {
	Items []normalizedItem `json:"items"`
}

type normalizedItem struct {
	SKUCode  string `json:"skuCode"`
	Quantity int32  `json:"quantity"`
	Price    string `json:"price"`
}

// FingerprintPlaceOrder builds a deterministic hash of the placement payload (excluding the idempotency key).
// Line order is significant because it is preserved on the order.
func FingerprintPlaceOrder(input types.PlaceOrderInput) (string, error) {
	normalized := normalizedPlaceOrderInput{Items: make([]normalizedItem, 0, len(input.Items))}
	for _, item := range input.Items {
		normalized.Items = append(normalized.Items, normalizedItem{
			SKUCode:  strings.TrimSpace(item.SKUCode),
			Quantity: item.Quantity,
			Price:    item.Price.String(),
		})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
