package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	iamclient "github.com/Apurer/go-gin-order-service/internal/clients/http/iam"
	inventoryclient "github.com/Apurer/go-gin-order-service/internal/clients/http/inventory"
	ordersinventory "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/inventory"
	ordersmemory "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/persistence/postgres"
	ordersredis "github.com/Apurer/go-gin-order-service/internal/domains/orders/adapters/redis"
	ordersapp "github.com/Apurer/go-gin-order-service/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-order-service/internal/platform/auth"
	"github.com/Apurer/go-gin-order-service/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-order-service/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-order-service/internal/platform/postgres"
)

// OrderStack is the order coordinator with the stores it was built on.
type OrderStack struct {
	Service orderports.Service
	// Ready reports store reachability for readiness probes.
	Ready   map[string]func(ctx context.Context) error
	cleanup []func()
}

// Close releases store connections.
func (s *OrderStack) Close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
}

// BuildOrderStack wires storage, the inventory gateway and the coordinator.
// The worker process builds the same stack so activities and inline placement agree.
func BuildOrderStack(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*OrderStack, error) {
	logger := instruments.Logger
	stack := &OrderStack{Ready: map[string]func(context.Context) error{}}

	var (
		repo        orderports.Repository
		idempotency orderports.IdempotencyStore
	)
	db, closeDB := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	stack.cleanup = append(stack.cleanup, closeDB)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			stack.Close()
			return nil, fmt.Errorf("migrate order schema: %w", err)
		}
		repo = orderspostgres.NewRepository(db)
		idempotency = orderspostgres.NewIdempotencyStore(db)
		stack.Ready["postgres"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	} else {
		repo = ordersmemory.NewRepository()
		idempotency = ordersmemory.NewIdempotencyStore()
	}

	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		stack.cleanup = append(stack.cleanup, func() { _ = rdb.Close() })
		idempotency = ordersredis.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)
		stack.Ready["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		logger.Info("idempotency keys stored in redis", slog.String("addr", cfg.RedisAddr))
	}

	client, err := inventoryclient.NewClient(cfg.InventoryBaseURL, tracedHTTPClient(cfg))
	if err != nil {
		stack.Close()
		return nil, err
	}

	core := ordersapp.NewService(repo, ordersinventory.NewGateway(client),
		ordersapp.WithLogger(logger),
		ordersapp.WithMeter(instruments.Meter("internal.orders.application")),
		ordersapp.WithRetryPolicy(cfg.Retry),
		ordersapp.WithBreakerSettings(cfg.Breaker),
		ordersapp.WithIdempotencyStore(idempotency),
	)
	stack.Service = ordersobs.New(core,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	return stack, nil
}

// BuildValidator picks local signature checks or delegation to the credential issuer.
func BuildValidator(cfg Config) (auth.Validator, error) {
	if cfg.AuthMode == AuthModeLocal {
		tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Expiration)
		if err != nil {
			return nil, err
		}
		return auth.NewLocalValidator(tokens), nil
	}
	issuer, err := iamclient.NewClient(cfg.IAMBaseURL, tracedHTTPClient(cfg))
	if err != nil {
		return nil, err
	}
	return auth.NewRemoteValidator(issuer), nil
}

func tracedHTTPClient(cfg Config) *http.Client {
	return &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
