package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
)

// Profiling label keys
const (
	ProfilingLabelMethod     = "method"
	ProfilingLabelRoute      = "route"
	ProfilingLabelController = "controller"
	ProfilingLabelTenantID   = "tenant_id"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled   bool
	SkipPaths []string
}

// ProfilingWithConfig returns middleware that runs the request under
// pyroscope labels (method, route, controller, tenant_id) so profiles can be
// broken down per endpoint and tenant.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path, cfg.SkipPaths, nil) {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), extractProfilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func extractProfilingLabels(c *gin.Context) map[string]string {
	labels := make(map[string]string, 4)

	if method := c.Request.Method; method != "" {
		labels[ProfilingLabelMethod] = method
	}
	route := c.FullPath()
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if controller := extractControllerFromRoute(route); controller != "" {
		labels[ProfilingLabelController] = controller
	}
	if tenantID := GetJWTTenantID(c); tenantID != "" {
		labels[ProfilingLabelTenantID] = tenantID
	}
	return labels
}

// extractControllerFromRoute returns the first resource segment of a route
// pattern, e.g. "/api/v1/payments/:id/receipts" -> "payments".
func extractControllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
