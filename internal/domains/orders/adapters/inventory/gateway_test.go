package inventory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventoryclient "github.com/Apurer/go-gin-order-service/internal/clients/http/inventory"
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

func newGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := inventoryclient.NewClient(server.URL, server.Client())
	require.NoError(t, err)
	return NewGateway(client)
}

func TestGateway_ForwardsCredential(t *testing.T) {
	var authHeader string
	gw := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("true"))
	})

	ok, err := gw.CheckAvailability(context.Background(), "A", 2, auth.Credential("abc"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Bearer abc", authHeader)
}

func TestGateway_TranslatesErrors(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ports.ErrSKUNotFound},
		{http.StatusBadRequest, ports.ErrInventoryRejected},
		{http.StatusUnauthorized, ports.ErrInventoryUnauthorized},
		{http.StatusInternalServerError, ports.ErrInventoryUnavailable},
	}
	for _, tc := range cases {
		status := tc.status
		gw := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})
		err := gw.Deduct(context.Background(), "A", 1, auth.Credential("abc"))
		assert.ErrorIs(t, err, tc.want, "status %d", status)
	}
}

func TestGateway_TransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := inventoryclient.NewClient(url, nil)
	require.NoError(t, err)
	_, err = NewGateway(client).CheckAvailability(context.Background(), "A", 1, "")
	assert.ErrorIs(t, err, ports.ErrInventoryUnavailable)
}

func TestGateway_MalformedBodyIsUnavailable(t *testing.T) {
	gw := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})
	_, err := gw.CheckAvailability(context.Background(), "A", 1, "")
	assert.ErrorIs(t, err, ports.ErrInventoryUnavailable)
}

func TestGateway_Unconfigured(t *testing.T) {
	var gw *Gateway
	err := gw.Deduct(context.Background(), "A", 1, "")
	assert.True(t, errors.Is(err, ports.ErrInventoryUnavailable))
}
