package orderserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// HealthAPI serves liveness and readiness probes.
type HealthAPI struct {
	checks  map[string]ReadinessCheck
	timeout time.Duration
}

// NewHealthAPI registers named readiness checks. Nil checks are ignored.
func NewHealthAPI(checks map[string]ReadinessCheck) *HealthAPI {
	registered := make(map[string]ReadinessCheck, len(checks))
	for name, check := range checks {
		if check != nil {
			registered[name] = check
		}
	}
	return &HealthAPI{checks: registered, timeout: 2 * time.Second}
}

// Get /healthz
func (api *HealthAPI) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// Get /readyz
func (api *HealthAPI) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), api.timeout)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(api.checks))
	for name, check := range api.checks {
		if err := check(ctx); err != nil {
			components[name] = "DOWN: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "UP"
	}
	overall := "UP"
	if status != http.StatusOK {
		overall = "DOWN"
	}
	c.JSON(status, gin.H{"status": overall, "components": components})
}
