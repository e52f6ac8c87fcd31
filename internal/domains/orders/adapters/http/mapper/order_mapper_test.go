package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
)

func TestPlaceOrderRequest_AcceptsNumericPrices(t *testing.T) {
	var req PlaceOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"skuCode":"A","quantity":2,"price":10.0}]}`), &req))

	input := ToPlaceOrderInput(req, "  key-1 ")
	require.Len(t, input.Items, 1)
	assert.Equal(t, "key-1", input.IdempotencyKey)
	assert.True(t, decimal.NewFromInt(10).Equal(input.Items[0].Price))
}

func TestFromResponse_RendersMoneyAsNumbers(t *testing.T) {
	now := time.Date(2025, 11, 10, 8, 0, 0, 0, time.UTC)
	body := FromResponse(&ordertypes.OrderResponse{
		OrderNumber: "ord-1",
		Status:      "PLACED",
		Total:       decimal.RequireFromString("20"),
		Items: []ordertypes.ItemView{{
			SKUCode: "A", Quantity: 2,
			Price:     decimal.RequireFromString("10"),
			LineTotal: decimal.RequireFromString("20"),
		}},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	})

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total":20.00`)
	assert.Contains(t, string(raw), `"lineTotal":20.00`)
	assert.NotContains(t, string(raw), "deductionFailures")
}

func TestFromResponse_Fallback(t *testing.T) {
	body := FromResponse(&ordertypes.OrderResponse{
		OrderNumber:   ordertypes.FallbackOrderNumber,
		Status:        "FAILED",
		Message:       "Insufficient stock for SKU: A",
		FailureReason: ordertypes.FailureInsufficientStock,
	})
	assert.Nil(t, body.CreatedAt)
	assert.Equal(t, json.Number("0.00"), body.Total)
	assert.Equal(t, ordertypes.FailureInsufficientStock, body.FailureReason)
}

func TestParseIfMatch(t *testing.T) {
	v, err := ParseIfMatch(`"3"`)
	require.NoError(t, err)
	assert.Equal(t, int64(3), *v)

	v, err = ParseIfMatch(`W/"4"`)
	require.NoError(t, err)
	assert.Equal(t, int64(4), *v)

	v, err = ParseIfMatch("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseIfMatch(`"abc"`)
	assert.ErrorIs(t, err, ErrInvalidETag)

	assert.Equal(t, `"7"`, ETag(7))
}
