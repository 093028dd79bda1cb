package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	tenantID := uuid.New()
	engine := gin.New()
	engine.Use(HTTPMetrics(HTTPMetricsConfig{Meter: provider.Meter("http.server"), Enabled: true}))
	engine.Use(func(c *gin.Context) {
		c.Set(TenantIDKey, tenantID.String())
		c.Next()
	})
	engine.GET("/api/v1/payments/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/payments/1", nil))
	serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/payments/2", nil))
	serve(engine, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	var routes []string
	var observations uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				require.Equal(t, "http_server_request_total", m.Name)
				for _, dp := range data.DataPoints {
					total += dp.Value
					route, _ := dp.Attributes.Value("http.route")
					routes = append(routes, route.AsString())
				}
			case metricdata.Histogram[float64]:
				require.Equal(t, "http_server_request_duration_seconds", m.Name)
				for _, dp := range data.DataPoints {
					observations += dp.Count
				}
			}
		}
	}

	assert.Equal(t, int64(3), total)
	assert.Equal(t, uint64(3), observations)
	assert.ElementsMatch(t, []string{"/api/v1/payments/:id", "unmatched"}, routes)
}

func TestHTTPMetrics_Disabled(t *testing.T) {
	engine := gin.New()
	engine.Use(HTTPMetrics(HTTPMetricsConfig{Enabled: false}))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
