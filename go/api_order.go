package orderserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	orderports "github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
)

// IdempotencyKeyHeader lets clients retry a placement without creating a second order.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderAPI wires HTTP transport with the orders bounded context service and workflows.
type OrderAPI struct {
	service   orderports.Service
	workflows orderports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI. A nil workflows value places orders on the service directly.
func NewOrderAPI(service orderports.Service, workflows orderports.WorkflowOrchestrator) *OrderAPI {
	return &OrderAPI{service: service, workflows: workflows}
}

// Post /api/v1/orders
// Place an order
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	var payload orderhttpmapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	credential, _ := auth.CredentialFromGin(c)
	input := orderhttpmapper.ToPlaceOrderInput(payload, c.GetHeader(IdempotencyKeyHeader))
	placed, err := api.placeOrder(c.Request.Context(), input, credential)
	if err != nil {
		respondError(c, err)
		return
	}
	if placed.IsFallback() {
		status := fallbackStatus(placed.FailureReason)
		if status == http.StatusServiceUnavailable {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		}
		c.JSON(status, orderhttpmapper.FromResponse(placed))
		return
	}
	c.Header("ETag", orderhttpmapper.ETag(placed.Version))
	c.JSON(http.StatusOK, orderhttpmapper.FromResponse(placed))
}

func (api *OrderAPI) placeOrder(ctx context.Context, input ordertypes.PlaceOrderInput, credential auth.Credential) (*ordertypes.OrderResponse, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrder(ctx, input, credential)
	}
	return api.service.PlaceOrder(ctx, input, credential)
}

// Get /api/v1/orders/:orderNumber
// Fetch an order by its number
func (api *OrderAPI) GetOrder(c *gin.Context) {
	order, err := api.service.GetOrder(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("ETag", orderhttpmapper.ETag(order.Version))
	c.JSON(http.StatusOK, orderhttpmapper.FromResponse(order))
}

// Put /api/v1/orders/:orderNumber
// Update status or items of an order
func (api *OrderAPI) UpdateOrder(c *gin.Context) {
	expected, err := orderhttpmapper.ParseIfMatch(c.GetHeader("If-Match"))
	if err != nil {
		respondError(c, err)
		return
	}
	var payload orderhttpmapper.UpdateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := orderhttpmapper.ToUpdateOrderInput(payload, expected)
	updated, err := api.service.UpdateOrder(c.Request.Context(), c.Param("orderNumber"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("ETag", orderhttpmapper.ETag(updated.Version))
	c.JSON(http.StatusOK, orderhttpmapper.FromResponse(updated))
}
