package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	ordersapp "github.com/Apurer/go-gin-order-service/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-order-service/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
	orderactivities "github.com/Apurer/go-gin-order-service/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-order-service/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// WorkflowStarter is the slice of the Temporal client the orchestrator uses.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun
}

// TemporalOrderWorkflows runs placements as Temporal workflows. The caller's
// credential travels in the workflow input and is therefore recorded in
// workflow history.
type TemporalOrderWorkflows struct {
	client    WorkflowStarter
	taskQueue string
}

func NewTemporalOrderWorkflows(c WorkflowStarter) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.OrderPlacementTaskQueue}
}

// PlaceOrder starts the placement workflow and waits for its result. A repeated
// idempotency key with the same payload attaches to the workflow already
// started for it. Typed activity failures come back as their sentinels.
func (o *TemporalOrderWorkflows) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput, credential auth.Credential) (*ordertypes.OrderResponse, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildOrderPlacementWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.OrderPlacementWorkflowName,
		orderworkflows.OrderPlacementWorkflowInput{
			Command: orderactivities.PlaceOrderActivityInput{Command: input, Credential: credential},
			TraceID: traceComponent,
		},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
		} else {
			return nil, err
		}
	}
	var response ordertypes.OrderResponse
	if err := run.Get(ctx, &response); err != nil {
		return nil, orderactivities.DecodeError(err)
	}
	return &response, nil
}

// InlineOrderWorkflows executes the service directly without Temporal.
type InlineOrderWorkflows struct {
	service ports.Service
}

func NewInlineOrderWorkflows(service ports.Service) *InlineOrderWorkflows {
	return &InlineOrderWorkflows{service: service}
}

func (o *InlineOrderWorkflows) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput, credential auth.Credential) (*ordertypes.OrderResponse, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	return o.service.PlaceOrder(ctx, input, credential)
}

func buildOrderPlacementWorkflowID(input ordertypes.PlaceOrderInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		// A different payload under the same key gets its own workflow so the
		// coordinator's idempotency store can reject it.
		fingerprint, _ := ordersapp.FingerprintPlaceOrder(input)
		return fmt.Sprintf("order-placement-idem-%s", hashIdempotencyKey(key, fingerprint))
	}
	return fmt.Sprintf("order-placement-%s-%s", uuid.NewString(), traceComponent)
}

func hashIdempotencyKey(key, fingerprint string) string {
	sum := sha256.Sum256([]byte(key + "\x00" + fingerprint))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
