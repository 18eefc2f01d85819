package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// HealthHandler handles health check endpoints
type HealthHandler struct {
	container string
	ready     ReadinessCheck
	timeout   time.Duration
}

// NewHealthHandler creates a health handler. A nil check always reports
// ready.
func NewHealthHandler(container string, ready ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		container: container,
		ready:     ready,
		timeout:   3 * time.Second,
	}
}

// Healthz handles liveness probe
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "photogate",
		"version": Version,
		"commit":  Commit,
	})
}

// Readyz runs the readiness check against the store.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":    "unavailable",
				"service":   "photogate",
				"container": h.container,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ready",
		"service":   "photogate",
		"container": h.container,
	})
}
