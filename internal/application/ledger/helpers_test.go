package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
	"github.com/travelops/backoffice/internal/infrastructure/persistence"
	"github.com/travelops/backoffice/internal/infrastructure/persistence/models"
	"github.com/travelops/backoffice/internal/infrastructure/persistence/tenant"
)

type recordingOutbox struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (o *recordingOutbox) PublishWithTx(_ context.Context, _ *gorm.DB, events ...shared.DomainEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, events...)
	return nil
}

func (o *recordingOutbox) types() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	for i, e := range o.events {
		out[i] = e.EventType()
	}
	return out
}

type fakeMetrics struct {
	receipts      []string
	voided        int
	disbursements []string
	statuses      []string
	canceled      map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{canceled: make(map[string]int)}
}

func (m *fakeMetrics) ReceiptRecorded(_ context.Context, currency, _ string, _ decimal.Decimal) {
	m.receipts = append(m.receipts, currency)
}
func (m *fakeMetrics) ReceiptVoided(context.Context) { m.voided++ }
func (m *fakeMetrics) Disbursement(_ context.Context, stage string) {
	m.disbursements = append(m.disbursements, stage)
}
func (m *fakeMetrics) PaymentStatusChanged(_ context.Context, to string) {
	m.statuses = append(m.statuses, to)
}
func (m *fakeMetrics) SourceCanceled(_ context.Context, kind string, n int) {
	m.canceled[kind] += n
}

type services struct {
	store       ledger.Store
	outbox      *recordingOutbox
	metrics     *fakeMetrics
	receipts    *ReceiptService
	payables    *PayableService
	rates       *RateService
	sources     *SourceService
	origination *OriginationService
	query       *QueryService
}

func setupServices(t *testing.T) *services {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, tenant.NewGuard().Register(db))

	outbox := &recordingOutbox{}
	return newServices(persistence.NewGormStore(db, outbox), outbox)
}

func newServices(store ledger.Store, outbox *recordingOutbox) *services {
	metrics := newFakeMetrics()
	opts := []Option{WithMetrics(metrics)}
	return &services{
		store:       store,
		outbox:      outbox,
		metrics:     metrics,
		receipts:    NewReceiptService(store, opts...),
		payables:    NewPayableService(store, opts...),
		rates:       NewRateService(store, opts...),
		sources:     NewSourceService(store, opts...),
		origination: NewOriginationService(store, opts...),
		query:       NewQueryService(store, opts...),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireKind(t *testing.T, err error, kind shared.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, shared.KindOf(err), "unexpected error: %v", err)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "not a domain error: %v", err)
	require.Equal(t, code, de.Code)
}

// sellTicket records a USD ticket and returns the response
func sellTicket(t *testing.T, s *services, tenantID uuid.UUID, number, sales, cost string) *OriginationResponse {
	t.Helper()
	resp, err := s.sources.RecordTicketSale(context.Background(), tenantID, uuid.New(), RecordTicketSaleRequest{
		TicketNumber:  number,
		PassengerName: "Jane Traveler",
		Airline:       "EK",
		CustomerName:  "Acme Corp",
		VendorName:    "Emirates",
		Currency:      "USD",
		NetSales:      dec(sales),
		NetCost:       dec(cost),
	})
	require.NoError(t, err)
	return resp
}

// failingStore injects a write failure into payable saves while leaving
// every other repository untouched
type failingStore struct {
	ledger.Store
}

func (s failingStore) Tx(ctx context.Context, tenantID uuid.UUID, fn func(tx ledger.Tx) error) error {
	return s.Store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		return fn(failingTx{Tx: tx})
	})
}

type failingTx struct {
	ledger.Tx
}

func (t failingTx) Payables() ledger.PayableRepository {
	return failingPayables{PayableRepository: t.Tx.Payables()}
}

type failingPayables struct {
	ledger.PayableRepository
}

var errInjected = errors.New("injected payable write failure")

func (failingPayables) Save(context.Context, *ledger.Payable) error {
	return errInjected
}
