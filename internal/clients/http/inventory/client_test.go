package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckAvailability_SendsQueryAndToken(t *testing.T) {
	var gotPath, gotSKU, gotQty, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSKU = r.URL.Query().Get("sku")
		gotQty = r.URL.Query().Get("qty")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("true"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, server.Client())
	require.NoError(t, err)

	ok, err := client.CheckAvailability(context.Background(), CheckParams{SKU: "SKU 1", Quantity: 2}, WithBearerToken("tok"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/api/v1/inventory/check", gotPath)
	require.Equal(t, "SKU 1", gotSKU)
	require.Equal(t, "2", gotQty)
	require.Equal(t, "Bearer tok", gotAuth)
}

func TestCheckAvailability_NoTokenNoHeader(t *testing.T) {
	var hadHeader bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadHeader = r.Header["Authorization"]
		_, _ = w.Write([]byte("false"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)

	ok, err := client.CheckAvailability(context.Background(), CheckParams{SKU: "A", Quantity: 1}, WithBearerToken(""))
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, hadHeader)
}

func TestDeduct_SendsQuery(t *testing.T) {
	var gotMethod, gotPath, gotSKU string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotSKU = r.URL.Query().Get("skuCode")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", nil)
	require.NoError(t, err)

	require.NoError(t, client.Deduct(context.Background(), DeductParams{SKUCode: "A", Quantity: 3}))
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/api/v1/inventory/deduct", gotPath)
	require.Equal(t, "A", gotSKU)
}

func TestClient_ClassifiesStatuses(t *testing.T) {
	cases := map[int]error{
		http.StatusNotFound:            ErrNotFound,
		http.StatusBadRequest:          ErrBadRequest,
		http.StatusUnauthorized:        ErrUnauthorized,
		http.StatusForbidden:           ErrUnauthorized,
		http.StatusInternalServerError: ErrUnexpectedStatus,
		http.StatusServiceUnavailable:  ErrUnexpectedStatus,
	}
	for status, want := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", status)
		}))
		client, err := NewClient(server.URL, nil)
		require.NoError(t, err)

		_, err = client.CheckAvailability(context.Background(), CheckParams{SKU: "A", Quantity: 1})
		require.ErrorIs(t, err, want, "status %d", status)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, status, statusErr.StatusCode)
		server.Close()
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ", nil)
	require.Error(t, err)
}
