package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything that can report upstream reachability.
type Pinger interface {
	Service() string
	Ping(ctx context.Context) error
}

// HealthHandler returns a handler reporting service health plus the
// reachability of every upstream collaborator. Any unreachable upstream
// flips the overall status to 503 so load balancers stop routing here.
func HealthHandler(version string, upstreams ...Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		healthy := true
		components := make(map[string]string, len(upstreams))
		for _, u := range upstreams {
			if err := u.Ping(ctx); err != nil {
				components[u.Service()] = "unreachable"
				healthy = false
				continue
			}
			components[u.Service()] = "ok"
		}

		status := http.StatusOK
		overall := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}
		return c.JSON(status, map[string]interface{}{
			"status":    overall,
			"version":   version,
			"upstreams": components,
		})
	}
}
