package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/travelops/backoffice/internal/interfaces/http/dto"
)

// DefaultMaxBodySize is used when no limit is configured
const DefaultMaxBodySize int64 = 1 << 20

// BodyLimit rejects requests whose body is larger than maxBytes.
// Requests announcing a larger Content-Length are refused up front; bodies
// without a length are cut off by http.MaxBytesReader while decoding.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body too large",
				c.GetString("request_id"),
			))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
