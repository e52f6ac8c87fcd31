package orderserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	identityapp "github.com/Apurer/go-gin-order-service/internal/domains/identity/application"
	orderhttpmapper "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/http/mapper"
	ordersapp "github.com/Apurer/go-gin-order-service/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	orderports "github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-order-service/internal/shared/errors"
)

// retryAfterSeconds matches the coordinator's default retry spacing.
const retryAfterSeconds = 1

var problemResponder = apierrors.NewChainedResponder("",
	apierrors.MapSentinel(apierrors.ErrValidation, ordersapp.ErrInvalidInput, orderhttpmapper.ErrInvalidETag),
	apierrors.MapSentinel(apierrors.ErrNotFound, orderports.ErrNotFound, orderports.ErrSKUNotFound),
	apierrors.MapSentinel(apierrors.ErrConflict, orderports.ErrVersionConflict, orderports.ErrDuplicateOrder, orderports.ErrIdempotencyConflict),
	apierrors.MapSentinel(apierrors.ErrInsufficientStock, ordersapp.ErrInsufficientStock),
	apierrors.MapSentinel(apierrors.ErrUnprocessable, orderports.ErrInventoryRejected),
	apierrors.MapSentinel(apierrors.ErrUnauthorized, orderports.ErrInventoryUnauthorized, identityapp.ErrAuthentication, identityapp.ErrInvalidToken),
	mapUnavailable,
)

func mapUnavailable(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, orderports.ErrInventoryUnavailable) || errors.Is(err, ordersapp.ErrCircuitOpen) {
		return apierrors.ErrServiceUnavailable.
			WithDetail(ordersapp.MessageInventoryUnavailable).
			WithRetryAfter(retryAfterSeconds), true
	}
	return apierrors.ProblemDetail{}, false
}

// respondError answers with the RFC 7807 problem for err.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problemResponder.RespondError(c, err)
}

// respondBadRequest reports a request body or header that could not be read.
func respondBadRequest(c *gin.Context, err error) {
	apierrors.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

// fallbackStatus picks the status of a degraded placement body.
func fallbackStatus(reason string) int {
	if reason == ordertypes.FailureInsufficientStock {
		return http.StatusConflict
	}
	return http.StatusServiceUnavailable
}
