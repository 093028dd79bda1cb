package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	ledgerapp "github.com/travelops/backoffice/internal/application/ledger"
	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/infrastructure/cache"
	"github.com/travelops/backoffice/internal/infrastructure/event"
)

func TestRedisIdempotencyStore(t *testing.T) {
	skipShort(t)

	client := NewTestRedis(t)
	store := cache.NewRedisIdempotencyStoreWithClient(client, "it")
	ctx := context.Background()

	t.Run("first mark wins", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "http:tenant:key-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)

		marked, err = store.MarkProcessed(ctx, "http:tenant:key-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, marked)

		done, err := store.IsProcessed(ctx, "http:tenant:key-1")
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("unknown key is not processed", func(t *testing.T) {
		done, err := store.IsProcessed(ctx, "http:tenant:missing")
		require.NoError(t, err)
		assert.False(t, done)
	})

	t.Run("keys expire after ttl", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "http:tenant:short", time.Second)
		require.NoError(t, err)
		require.True(t, marked)

		require.Eventually(t, func() bool {
			done, err := store.IsProcessed(ctx, "http:tenant:short")
			return err == nil && !done
		}, 5*time.Second, 100*time.Millisecond)
	})
}

func TestOutbox_BookingConfirmedOriginatesOnce(t *testing.T) {
	skipShort(t)

	s := newLedgerSetup(t)
	client := NewTestRedis(t)
	ctx := context.Background()
	log := zap.NewNop()
	tenantID := uuid.New()

	handler := event.NewIdempotentHandler(
		ledgerapp.NewBookingConfirmedHandler(s.origination, log),
		cache.NewRedisIdempotencyStoreWithClient(client, "it"),
		log,
	)
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(handler)
	require.NoError(t, bus.Start(ctx))

	processorCfg := event.DefaultOutboxProcessorConfig()
	processorCfg.CleanupEnabled = false
	processor := event.NewOutboxProcessor(event.NewGormOutboxRepository(s.db.DB), bus, s.serializer, processorCfg, log)

	booking := ledger.NewBookingConfirmedEvent(tenantID, uuid.New(), "Umrah Ramadan 2026", ledger.OriginationTerms{
		Reference:    "UMR-2026-0042",
		CustomerName: "Al Noor Group",
		VendorName:   "Makkah Hotels",
		Currency:     "USD",
		SaleAmount:   decimal.NewFromInt(4200),
		CostAmount:   decimal.NewFromInt(3100),
	})
	require.NoError(t, event.NewOutboxPublisher(s.serializer).PublishWithTx(ctx, s.db.DB, booking))

	assert.Equal(t, 1, processor.ProcessBatch(ctx))
	assert.EqualValues(t, 1, handler.GetMetrics().Stats().EventsProcessed)

	// redelivery of the same event is skipped
	require.NoError(t, bus.Publish(ctx, booking))
	assert.EqualValues(t, 1, handler.GetMetrics().Stats().EventsDuplicate)

	payments, err := s.query.ListPayments(ctx, tenantID, ledgerapp.PaymentListFilter{OriginKind: string(ledger.OriginBooking)})
	require.NoError(t, err)
	require.EqualValues(t, 1, payments.Total)
	assert.True(t, payments.Items[0].Amount.Equal(decimal.NewFromInt(4200)))

	payables, err := s.query.ListPayables(ctx, tenantID, ledgerapp.PayableListFilter{OriginKind: string(ledger.OriginBooking)})
	require.NoError(t, err)
	require.EqualValues(t, 1, payables.Total)
	assert.True(t, payables.Items[0].Amount.Equal(decimal.NewFromInt(3100)))

	// the origination itself recorded PaymentCreated and PayableCreated
	assert.Equal(t, 2, processor.ProcessBatch(ctx))
	assert.Zero(t, processor.ProcessBatch(ctx))
}
