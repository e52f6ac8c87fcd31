package inventory

import (
	"context"
	"errors"
	"fmt"

	inventoryclient "github.com/Apurer/go-gin-order-service/internal/clients/http/inventory"
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

var _ ports.InventoryGateway = (*Gateway)(nil)

// Client is the subset of the inventory HTTP client the gateway needs.
type Client interface {
	CheckAvailability(ctx context.Context, params inventoryclient.CheckParams, reqEditors ...inventoryclient.RequestEditorFn) (bool, error)
	Deduct(ctx context.Context, params inventoryclient.DeductParams, reqEditors ...inventoryclient.RequestEditorFn) error
}

// Gateway adapts the inventory HTTP client to the orders port, forwarding
// the caller's credential and translating transport failures into port errors.
type Gateway struct {
	client Client
}

func NewGateway(client Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) CheckAvailability(ctx context.Context, skuCode string, quantity int32, credential auth.Credential) (bool, error) {
	if g == nil || g.client == nil {
		return false, fmt.Errorf("%w: gateway not configured", ports.ErrInventoryUnavailable)
	}
	ok, err := g.client.CheckAvailability(ctx,
		inventoryclient.CheckParams{SKU: skuCode, Quantity: quantity},
		inventoryclient.WithBearerToken(credential.Token()),
	)
	if err != nil {
		return false, translate(err, skuCode)
	}
	return ok, nil
}

func (g *Gateway) Deduct(ctx context.Context, skuCode string, quantity int32, credential auth.Credential) error {
	if g == nil || g.client == nil {
		return fmt.Errorf("%w: gateway not configured", ports.ErrInventoryUnavailable)
	}
	err := g.client.Deduct(ctx,
		inventoryclient.DeductParams{SKUCode: skuCode, Quantity: quantity},
		inventoryclient.WithBearerToken(credential.Token()),
	)
	if err != nil {
		return translate(err, skuCode)
	}
	return nil
}

func translate(err error, skuCode string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, inventoryclient.ErrNotFound):
		return fmt.Errorf("%w: %s: %w", ports.ErrSKUNotFound, skuCode, err)
	case errors.Is(err, inventoryclient.ErrBadRequest):
		return fmt.Errorf("%w: %s: %w", ports.ErrInventoryRejected, skuCode, err)
	case errors.Is(err, inventoryclient.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ports.ErrInventoryUnauthorized, err)
	default:
		return fmt.Errorf("%w: %w", ports.ErrInventoryUnavailable, err)
	}
}
