package orderserver

import (
	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Protected routes run the configured protection middleware first.
	Protected bool
}

// ApiHandleFunctions groups the handler sets a process serves. Nil sets are skipped,
// so the order API and the credential issuer share one router builder.
type ApiHandleFunctions struct {
	OrderAPI  *OrderAPI
	AuthAPI   *AuthAPI
	HealthAPI *HealthAPI
}

type routerConfig struct {
	middleware []gin.HandlerFunc
	protection []gin.HandlerFunc
}

// RouterOption customizes NewRouter.
type RouterOption func(*routerConfig)

// WithMiddleware installs engine-wide middleware ahead of every route.
func WithMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(cfg *routerConfig) {
		cfg.middleware = append(cfg.middleware, middleware...)
	}
}

// WithProtection installs middleware that runs only on protected routes.
func WithProtection(middleware ...gin.HandlerFunc) RouterOption {
	return func(cfg *routerConfig) {
		cfg.protection = append(cfg.protection, middleware...)
	}
}

// NewRouter returns a new router with recovery installed.
func NewRouter(handleFunctions ApiHandleFunctions, opts ...RouterOption) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	return NewRouterWithGinEngine(router, handleFunctions, opts...)
}

// NewRouterWithGinEngine adds routes to an existing gin engine. Middleware is
// registered before any route so it applies to all of them.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, opts ...RouterOption) *gin.Engine {
	cfg := &routerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if len(cfg.middleware) > 0 {
		router.Use(cfg.middleware...)
	}
	for _, route := range getRoutes(handleFunctions) {
		handlers := make([]gin.HandlerFunc, 0, len(cfg.protection)+1)
		if route.Protected {
			handlers = append(handlers, cfg.protection...)
		}
		handlers = append(handlers, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	var routes []Route
	if api := handleFunctions.OrderAPI; api != nil {
		for _, prefix := range []string{"/api/v1/orders", "/orders"} {
			routes = append(routes,
				Route{"PlaceOrder", "POST", prefix, api.PlaceOrder, true},
				Route{"GetOrder", "GET", prefix + "/:orderNumber", api.GetOrder, true},
				Route{"UpdateOrder", "PUT", prefix + "/:orderNumber", api.UpdateOrder, true},
			)
		}
	}
	if api := handleFunctions.AuthAPI; api != nil {
		routes = append(routes,
			Route{"Login", "POST", "/api/v1/auth/login", api.Login, false},
			Route{"ValidateToken", "POST", "/api/v1/auth/validate", api.Validate, false},
		)
	}
	if api := handleFunctions.HealthAPI; api != nil {
		routes = append(routes,
			Route{"Liveness", "GET", "/healthz", api.Liveness, false},
			Route{"Readiness", "GET", "/readyz", api.Readiness, false},
			Route{"ActuatorHealth", "GET", "/actuator/health", api.Readiness, false},
		)
	}
	return routes
}
