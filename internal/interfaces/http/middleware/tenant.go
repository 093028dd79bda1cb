package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tenant context keys
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// SkipPaths are paths that don't require tenant context
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		SkipPaths: []string{"/health", "/api/v1/health"},
	}
}

// TenantMiddleware resolves the request tenant with default configuration
func TenantMiddleware() gin.HandlerFunc {
	return TenantMiddlewareWithConfig(DefaultTenantConfig())
}

// TenantMiddlewareWithConfig resolves the tenant of the request from the
// JWT claims and stores it as a uuid.UUID under TenantIDKey. The
// X-Tenant-ID header is never a source of the tenant; when present it must
// name the same tenant as the token.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path, cfg.SkipPaths, nil) {
			c.Next()
			return
		}

		claimTenant := GetJWTTenantID(c)
		if claimTenant == "" {
			respondUnauthorized(c, "Tenant context required")
			return
		}
		tenantID, err := uuid.Parse(claimTenant)
		if err != nil || tenantID == uuid.Nil {
			respondUnauthorized(c, "Invalid tenant ID format")
			return
		}

		if header := c.GetHeader(TenantHeaderKey); header != "" {
			headerID, err := uuid.Parse(header)
			if err != nil || headerID != tenantID {
				if cfg.Logger != nil {
					cfg.Logger.Warn("Tenant header does not match token",
						zap.String("tenant_id", tenantID.String()),
						zap.String("header", header),
					)
				}
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "TENANT_MISMATCH",
						"message": "X-Tenant-ID does not match the authenticated tenant",
					},
				})
				return
			}
		}

		c.Set(TenantIDKey, tenantID.String())
		c.Next()
	}
}

// GetTenantID returns the tenant resolved by TenantMiddleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(TenantIDKey)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
