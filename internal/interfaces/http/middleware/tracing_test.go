package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingWithConfig(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(TracingWithConfig(TracingConfig{ServiceName: "test", Enabled: true}))
	engine.Use(SpanErrorMarker())
	engine.Use(func(c *gin.Context) {
		c.Set(JWTTenantIDKey, "tenant-1")
		c.Next()
	})
	engine.POST("/api/v1/payments/:id/receipts", func(c *gin.Context) {
		SetErrorCode(c, "BALANCE_EXCEEDED")
		c.Status(http.StatusUnprocessableEntity)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/42/receipts", nil)
	req.Header.Set(RequestIDKey, "req-1")
	serve(engine, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, codes.Error, span.Status().Code)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "req-1", attrs["request_id"].AsString())
	assert.Equal(t, "tenant-1", attrs["tenant_id"].AsString())
	assert.Equal(t, "BALANCE_EXCEEDED", attrs["error.code"].AsString())
}

func TestTracingDisabled(t *testing.T) {
	engine := gin.New()
	engine.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, serve(engine, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
