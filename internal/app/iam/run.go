package iam

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	orderserver "github.com/Apurer/go-gin-order-service/go"
	identitymemory "github.com/Apurer/go-gin-order-service/internal/domains/identity/adapters/memory"
	identityobs "github.com/Apurer/go-gin-order-service/internal/domains/identity/adapters/observability"
	identityapp "github.com/Apurer/go-gin-order-service/internal/domains/identity/application"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
	platformobservability "github.com/Apurer/go-gin-order-service/internal/platform/observability"
)

const serviceName = "iam-service"

// Run boots the credential issuer until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger
	if len(cfg.Users) == 0 {
		logger.Warn("IAM_USERS is empty, every login will be rejected")
	}

	router, err := NewRouter(cfg, instruments)
	if err != nil {
		return err
	}
	return orderserver.Serve(ctx, ":"+cfg.Port, router, logger)
}

// NewRouter builds the issuer's HTTP surface. Provider verification reuses it.
func NewRouter(cfg Config, instruments *platformobservability.Instruments) (*gin.Engine, error) {
	if instruments == nil || instruments.Logger == nil {
		instruments = &platformobservability.Instruments{Logger: slog.Default()}
	}
	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Expiration)
	if err != nil {
		return nil, err
	}
	service := identityobs.New(
		identityapp.NewService(identitymemory.NewRepository(cfg.Users...), tokens),
		identityobs.WithLogger(instruments.Logger),
		identityobs.WithTracer(instruments.Tracer("internal.identity.application")),
		identityobs.WithMeter(instruments.Meter("internal.identity.application")),
	)
	return orderserver.NewRouter(orderserver.ApiHandleFunctions{
		AuthAPI:   orderserver.NewAuthAPI(service),
		HealthAPI: orderserver.NewHealthAPI(nil),
	}, orderserver.WithMiddleware(
		otelgin.Middleware(serviceName),
		platformobservability.RequestLogger(instruments.Logger),
	)), nil
}
