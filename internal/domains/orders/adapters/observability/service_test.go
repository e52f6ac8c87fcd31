package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

type stubService struct {
	place   *ordertypes.OrderResponse
	err     error
	gotCred auth.Credential
}

func (s *stubService) PlaceOrder(_ context.Context, _ ordertypes.PlaceOrderInput, cred auth.Credential) (*ordertypes.OrderResponse, error) {
	s.gotCred = cred
	return s.place, s.err
}

func (s *stubService) GetOrder(context.Context, string) (*ordertypes.OrderResponse, error) {
	return s.place, s.err
}

func (s *stubService) UpdateOrder(context.Context, string, ordertypes.UpdateOrderInput) (*ordertypes.OrderResponse, error) {
	return s.place, s.err
}

func TestService_PlaceOrderDoesNotLogCredential(t *testing.T) {
	var buf bytes.Buffer
	inner := &stubService{place: &ordertypes.OrderResponse{OrderNumber: "ord-1", Status: "PLACED"}}
	svc := New(inner, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	result, err := svc.PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{}, auth.Credential("super-secret"))
	require.NoError(t, err)
	assert.Equal(t, "ord-1", result.OrderNumber)
	assert.Equal(t, auth.Credential("super-secret"), inner.gotCred)
	assert.NotContains(t, buf.String(), "super-secret")
	assert.Contains(t, buf.String(), "order placed")
}

func TestService_PlaceOrderFallbackLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	inner := &stubService{place: &ordertypes.OrderResponse{
		OrderNumber:   ordertypes.FallbackOrderNumber,
		Status:        "FAILED",
		FailureReason: ordertypes.FailureInventoryUnavailable,
	}}
	svc := New(inner, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	result, err := svc.PlaceOrder(context.Background(), ordertypes.PlaceOrderInput{}, "")
	require.NoError(t, err)
	assert.True(t, result.IsFallback())
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestService_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := New(&stubService{err: boom}, WithLogger(nil), WithTracer(nil))

	_, err := svc.GetOrder(context.Background(), "ord-1")
	assert.ErrorIs(t, err, boom)
	_, err = svc.UpdateOrder(context.Background(), "ord-1", ordertypes.UpdateOrderInput{})
	assert.ErrorIs(t, err, boom)
}
