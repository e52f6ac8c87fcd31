package mapper

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
)

// ErrInvalidETag is returned for an If-Match value that is not a version number.
var ErrInvalidETag = errors.New("If-Match must carry the order version")

// OrderItem is a line as it travels over HTTP.
type OrderItem struct {
	SKUCode  string          `json:"skuCode"`
	Quantity int32           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PlaceOrderRequest is the body of POST /api/v1/orders.
type PlaceOrderRequest struct {
	Items []OrderItem `json:"items" binding:"required"`
}

// UpdateOrderRequest is the body of PUT /api/v1/orders/{orderNumber}.
// Absent fields are left unchanged.
type UpdateOrderRequest struct {
	Status *string     `json:"status,omitempty"`
	Items  []OrderItem `json:"items,omitempty"`
}

// OrderLine is a line in a response, with its computed total.
type OrderLine struct {
	SKUCode   string      `json:"skuCode"`
	Quantity  int32       `json:"quantity"`
	Price     json.Number `json:"price"`
	LineTotal json.Number `json:"lineTotal"`
}

// DeductionFailure reports a stock deduction that did not go through.
type DeductionFailure struct {
	SKUCode string `json:"skuCode"`
	Reason  string `json:"reason"`
}

// Order is the response body of every order endpoint.
type Order struct {
	OrderNumber       string             `json:"orderNumber"`
	Status            string             `json:"status"`
	Message           string             `json:"message,omitempty"`
	Total             json.Number        `json:"total"`
	Items             []OrderLine        `json:"items,omitempty"`
	CreatedAt         *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time         `json:"updatedAt,omitempty"`
	Version           int64              `json:"version,omitempty"`
	FailureReason     string             `json:"failureReason,omitempty"`
	DeductionFailures []DeductionFailure `json:"deductionFailures,omitempty"`
}

// ToPlaceOrderInput converts a transport request into the placement command.
func ToPlaceOrderInput(req PlaceOrderRequest, idempotencyKey string) ordertypes.PlaceOrderInput {
	return ordertypes.PlaceOrderInput{
		Items:          toItemInputs(req.Items),
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

// ToUpdateOrderInput converts a transport request; expectedVersion comes from If-Match.
func ToUpdateOrderInput(req UpdateOrderRequest, expectedVersion *int64) ordertypes.UpdateOrderInput {
	return ordertypes.UpdateOrderInput{
		Status:          req.Status,
		Items:           toItemInputs(req.Items),
		ExpectedVersion: expectedVersion,
	}
}

// FromResponse converts the application read model into the HTTP body.
// Money is rendered as a JSON number with two decimals.
func FromResponse(resp *ordertypes.OrderResponse) Order {
	if resp == nil {
		return Order{}
	}
	out := Order{
		OrderNumber:   resp.OrderNumber,
		Status:        resp.Status,
		Message:       resp.Message,
		Total:         money(resp.Total),
		Version:       resp.Version,
		FailureReason: resp.FailureReason,
	}
	if !resp.CreatedAt.IsZero() {
		created := resp.CreatedAt.UTC()
		out.CreatedAt = &created
	}
	if !resp.UpdatedAt.IsZero() {
		updated := resp.UpdatedAt.UTC()
		out.UpdatedAt = &updated
	}
	for _, item := range resp.Items {
		out.Items = append(out.Items, OrderLine{
			SKUCode:   item.SKUCode,
			Quantity:  item.Quantity,
			Price:     money(item.Price),
			LineTotal: money(item.LineTotal),
		})
	}
	for _, failure := range resp.DeductionFailures {
		out.DeductionFailures = append(out.DeductionFailures, DeductionFailure{SKUCode: failure.SKUCode, Reason: failure.Reason})
	}
	return out
}

// ETag renders a version as a strong entity tag.
func ETag(version int64) string {
	return strconv.Quote(strconv.FormatInt(version, 10))
}

// ParseIfMatch reads a version from an If-Match header. An empty header yields nil.
// Weak tags and unquoted numbers are accepted.
func ParseIfMatch(header string) (*int64, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == "*" {
		return nil, nil
	}
	header = strings.TrimPrefix(header, "W/")
	header = strings.Trim(header, `"`)
	version, err := strconv.ParseInt(header, 10, 64)
	if err != nil || version <= 0 {
		return nil, ErrInvalidETag
	}
	return &version, nil
}

func toItemInputs(items []OrderItem) []ordertypes.ItemInput {
	if len(items) == 0 {
		return nil
	}
	inputs := make([]ordertypes.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, ordertypes.ItemInput{
			SKUCode:  item.SKUCode,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return inputs
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
