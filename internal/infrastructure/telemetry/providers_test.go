package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{Enabled: false}, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	require.NoError(t, tp.EnableSpanProfiles())
	assert.False(t, tp.IsSpanProfilesEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	require.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{Enabled: false}, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	require.NoError(t, mp.Shutdown(ctx))

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{Enabled: false}, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	require.NoError(t, lp.Shutdown(ctx))

	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: false}, logger)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresServerAddress(t *testing.T) {
	_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: true, ApplicationName: "backoffice"}, zap.NewNop())
	assert.ErrorContains(t, err, "server address")
}

func TestWithProfilingLabels(t *testing.T) {
	var seen map[string]string
	telemetry.WithProfilingLabels(context.Background(), map[string]string{
		"operation": "cancel_source",
	}, func(ctx context.Context) {
		seen = telemetry.ProfilingLabels(ctx)
	})
	assert.Equal(t, "cancel_source", seen["operation"])

	called := false
	telemetry.WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
	assert.True(t, called)
}
