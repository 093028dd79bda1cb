package telemetry_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestLedgerMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := telemetry.NewLedgerMetrics(provider.Meter("ledger"))
	require.NoError(t, err)

	ctx := context.Background()
	m.ReceiptRecorded(ctx, "EUR", "cash", decimal.RequireFromString("108.70"))
	m.ReceiptRecorded(ctx, "USD", "card", decimal.RequireFromString("40"))
	m.ReceiptVoided(ctx)
	m.Disbursement(ctx, "submitted")
	m.Disbursement(ctx, "approved")
	m.PaymentStatusChanged(ctx, "partial")
	m.SourceCanceled(ctx, "ticket", 2)
	m.OutboxDelivered(ctx, "ReceiptRecorded")
	m.OutboxFailed(ctx, "ReceiptRecorded", true)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["ledger_receipts_recorded_total"])
	assert.Equal(t, int64(1), sums["ledger_receipts_voided_total"])
	assert.Equal(t, int64(2), sums["ledger_payable_disbursements_total"])
	assert.Equal(t, int64(1), sums["ledger_payment_status_transitions_total"])
	assert.Equal(t, int64(1), sums["ledger_cancellation_cascades_total"])
	assert.Equal(t, int64(2), sums["ledger_cancellation_cascaded_entries_total"])
	assert.Equal(t, int64(2), sums["ledger_outbox_deliveries_total"])
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}
