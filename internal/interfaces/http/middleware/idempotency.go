package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/travelops/backoffice/internal/domain/shared"
	"github.com/travelops/backoffice/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader is the request header carrying the client key
const IdempotencyKeyHeader = "Idempotency-Key"

// maxIdempotencyKeyLength bounds client supplied keys
const maxIdempotencyKeyLength = 128

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a POST whose Idempotency-Key was already used
// successfully by the same tenant. Keys are recorded only after the handler
// answers with a non-error status, so a failed request can be retried with
// the same key. Requests without the header pass through. Store failures
// are logged and the request proceeds.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if c.Request.Method != http.MethodPost || key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", c.GetString("request_id")))
			return
		}

		storeKey := "http:" + c.GetString(TenantIDKey) + ":" + key
		ctx := c.Request.Context()

		processed, err := cfg.Store.IsProcessed(ctx, storeKey)
		if err != nil {
			log.Warn("Idempotency lookup failed", zap.String("key", key), zap.Error(err))
		} else if processed {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed",
				c.GetString("request_id"),
			))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		if _, err := cfg.Store.MarkProcessed(ctx, storeKey, cfg.TTL); err != nil {
			log.Warn("Failed to record idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
}
