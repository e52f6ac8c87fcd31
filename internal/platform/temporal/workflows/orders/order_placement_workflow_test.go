package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	ordersapp "github.com/Apurer/go-gin-order-service/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	orderports "github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
	orderactivities "github.com/Apurer/go-gin-order-service/internal/platform/temporal/activities/orders"
)

func TestOrderPlacementWorkflow_ReturnsActivityResult(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	var gotCredential string
	env.RegisterActivityWithOptions(
		func(_ context.Context, input orderactivities.PlaceOrderActivityInput) (*ordertypes.OrderResponse, error) {
			gotCredential = input.Credential.Token()
			return &ordertypes.OrderResponse{
				OrderNumber: "ord-1",
				Status:      "PLACED",
				Total:       decimal.RequireFromString("20"),
			}, nil
		},
		activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName},
	)

	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{
		Command: orderactivities.PlaceOrderActivityInput{
			Command:    ordertypes.PlaceOrderInput{Items: []ordertypes.ItemInput{{SKUCode: "A", Quantity: 2, Price: decimal.RequireFromString("10")}}},
			Credential: "tok",
		},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result ordertypes.OrderResponse
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, "ord-1", result.OrderNumber)
	require.True(t, decimal.RequireFromString("20").Equal(result.Total))
	require.Equal(t, "tok", gotCredential)
}

func TestOrderPlacementWorkflow_DoesNotRetryActivity(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	calls := 0
	env.RegisterActivityWithOptions(
		func(context.Context, orderactivities.PlaceOrderActivityInput) (*ordertypes.OrderResponse, error) {
			calls++
			return nil, errors.New("store down")
		},
		activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName},
	)

	env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.Equal(t, 1, calls)
}

type failingService struct {
	err error
}

func (s failingService) PlaceOrder(context.Context, ordertypes.PlaceOrderInput, auth.Credential) (*ordertypes.OrderResponse, error) {
	return nil, s.err
}

func (failingService) GetOrder(context.Context, string) (*ordertypes.OrderResponse, error) {
	return nil, nil
}

func (failingService) UpdateOrder(context.Context, string, ordertypes.UpdateOrderInput) (*ordertypes.OrderResponse, error) {
	return nil, nil
}

func TestOrderPlacementWorkflow_FailuresKeepTheirKind(t *testing.T) {
	sentinels := []error{
		orderports.ErrInventoryUnauthorized,
		orderports.ErrSKUNotFound,
		orderports.ErrIdempotencyConflict,
		ordersapp.ErrInvalidInput,
		ordersapp.ErrCircuitOpen,
	}
	for _, sentinel := range sentinels {
		t.Run(sentinel.Error(), func(t *testing.T) {
			var suite testsuite.WorkflowTestSuite
			env := suite.NewTestWorkflowEnvironment()
			activities := orderactivities.NewActivities(failingService{err: fmt.Errorf("%w: A1", sentinel)})
			env.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

			env.ExecuteWorkflow(OrderPlacementWorkflow, OrderPlacementWorkflowInput{})

			require.True(t, env.IsWorkflowCompleted())
			err := env.GetWorkflowError()
			require.Error(t, err)

			restored := orderactivities.DecodeError(err)
			require.True(t, errors.Is(restored, sentinel), "got %v", restored)
			require.Contains(t, restored.Error(), "A1")
		})
	}
}
