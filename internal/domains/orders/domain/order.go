package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPlaced    Status = "PLACED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
	StatusFailed    Status = "FAILED"
)

var (
	ErrEmptyOrderNumber = errors.New("order number is required")
	ErrNoItems          = errors.New("order must contain at least one item")
	ErrEmptySKU         = errors.New("sku code is required")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrNegativePrice    = errors.New("price must not be negative")
	ErrInvalidStatus    = errors.New("order status is invalid")
)

// ParseStatus normalizes free-form input and accepts only known states.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !isValidStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Item is a single SKU line. Price is the unit price captured at placement.
type Item struct {
	SKUCode  string
	Quantity int32
	Price    decimal.Decimal
}

// NewItem validates and constructs an order line.
func NewItem(skuCode string, quantity int32, price decimal.Decimal) (Item, error) {
	item := Item{SKUCode: strings.TrimSpace(skuCode), Quantity: quantity, Price: price}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Validate enforces line invariants.
func (i Item) Validate() error {
	if strings.TrimSpace(i.SKUCode) == "" {
		return ErrEmptySKU
	}
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// LineTotal is price multiplied by quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt32(i.Quantity))
}

// Order models the purchase order aggregate. Items are owned by the order
// and are always persisted and replaced together with it.
type Order struct {
	OrderNumber string
	Status      Status
	Items       []Item
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Version is the optimistic concurrency token; zero means not yet persisted.
	Version int64
}

// NewOrder builds a pending order for the supplied lines.
func NewOrder(orderNumber string, items []Item) (*Order, error) {
	order := &Order{
		OrderNumber: strings.TrimSpace(orderNumber),
		Status:      StatusPending,
	}
	if order.OrderNumber == "" {
		return nil, ErrEmptyOrderNumber
	}
	if err := order.ReplaceItems(items); err != nil {
		return nil, err
	}
	return order, nil
}

// Total recomputes the order amount from its lines. It is never stored.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// MarkPlaced transitions the order to PLACED and stamps its timestamps.
func (o *Order) MarkPlaced(at time.Time) error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	o.Status = StatusPlaced
	o.CreatedAt = at
	o.UpdatedAt = at
	return nil
}

// ReplaceItems swaps the full line set.
func (o *Order) ReplaceItems(items []Item) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	replaced := make([]Item, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		replaced = append(replaced, item)
	}
	o.Items = replaced
	return nil
}

// UpdateStatus accepts only members of the closed status set.
func (o *Order) UpdateStatus(status Status) error {
	if !isValidStatus(status) {
		return ErrInvalidStatus
	}
	o.Status = status
	return nil
}

// Touch refreshes the modification timestamp.
func (o *Order) Touch(at time.Time) {
	o.UpdatedAt = at
}

// Validate re-applies aggregate invariants before persistence.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.OrderNumber) == "" {
		return ErrEmptyOrderNumber
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	if o.Status == StatusPlaced && len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy so callers never share the item slice.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	return &clone
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusPlaced, StatusShipped, StatusDelivered, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}
