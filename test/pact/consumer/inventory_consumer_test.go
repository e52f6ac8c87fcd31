//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	inventoryclient "github.com/Apurer/go-gin-order-service/internal/clients/http/inventory"
	pacttest "github.com/Apurer/go-gin-order-service/test/pact"
)

func TestInventoryContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.InventoryProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	token := pacttest.ValidToken(t)
	bearer := matchers.Regex("Bearer "+token, `Bearer [A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`)

	pact.AddInteraction().
		Given(pacttest.StateSKUInStock).
		UponReceiving("an availability check for a stocked SKU").
		WithRequest(http.MethodGet, "/api/v1/inventory/check", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
			b.Query("sku", matchers.S(pacttest.InStockSKU))
			b.Query("qty", matchers.Term("2", `\d+`))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Body("application/json", []byte("true"))
		})

	pact.AddInteraction().
		Given(pacttest.StateSKUMissing).
		UponReceiving("an availability check for an unknown SKU").
		WithRequest(http.MethodGet, "/api/v1/inventory/check", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
			b.Query("sku", matchers.S(pacttest.MissingSKU))
			b.Query("qty", matchers.Term("1", `\d+`))
		}).
		WillRespondWith(http.StatusNotFound)

	pact.AddInteraction().
		Given(pacttest.StateSKUInStock).
		UponReceiving("a stock deduction for a stocked SKU").
		WithRequest(http.MethodPost, "/api/v1/inventory/deduct", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
			b.Query("skuCode", matchers.S(pacttest.InStockSKU))
			b.Query("qty", matchers.Term("2", `\d+`))
		}).
		WillRespondWith(http.StatusOK)

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client, err := inventoryclient.NewClient(mockBaseURL(config), nil)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		withToken := inventoryclient.WithBearerToken(token)

		available, err := client.CheckAvailability(ctx, inventoryclient.CheckParams{SKU: pacttest.InStockSKU, Quantity: 2}, withToken)
		if err != nil {
			return fmt.Errorf("check stocked sku: %w", err)
		}
		if !available {
			return errors.New("expected SKU-1 to be available")
		}
		_, err = client.CheckAvailability(ctx, inventoryclient.CheckParams{SKU: pacttest.MissingSKU, Quantity: 1}, withToken)
		if !errors.Is(err, inventoryclient.ErrNotFound) {
			return fmt.Errorf("expected not found for %s, got %v", pacttest.MissingSKU, err)
		}
		if err := client.Deduct(ctx, inventoryclient.DeductParams{SKUCode: pacttest.InStockSKU, Quantity: 2}, withToken); err != nil {
			return fmt.Errorf("deduct: %w", err)
		}
		return nil
	})
	require.NoError(t, err)
}

func mockBaseURL(config pactconsumer.MockServerConfig) string {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, config.Port)
}
