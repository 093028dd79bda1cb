package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
	"github.com/travelops/backoffice/internal/infrastructure/persistence/tenant"
)

// OutboxWriter serializes domain events into the outbox using the given transaction
type OutboxWriter interface {
	PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error
}

// GormStore implements ledger.Store on top of GORM
type GormStore struct {
	db     *gorm.DB
	outbox OutboxWriter
}

// NewGormStore creates a store. outbox may be nil, in which case recorded
// events are dropped.
func NewGormStore(db *gorm.DB, outbox OutboxWriter) *GormStore {
	return &GormStore{db: db, outbox: outbox}
}

// Tx runs fn inside a single database transaction scoped to tenantID
func (s *GormStore) Tx(ctx context.Context, tenantID uuid.UUID, fn func(tx ledger.Tx) error) error {
	if tenantID == uuid.Nil {
		return tenant.ErrTenantIDRequired
	}
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(newGormTx(db, tenantID, s.outbox, true))
	})
	return ClassifyError(err)
}

// View runs fn with tenant-scoped repositories outside a transaction
func (s *GormStore) View(ctx context.Context, tenantID uuid.UUID, fn func(tx ledger.Tx) error) error {
	if tenantID == uuid.Nil {
		return tenant.ErrTenantIDRequired
	}
	return ClassifyError(fn(newGormTx(s.db.WithContext(ctx), tenantID, s.outbox, false)))
}

// gormTx bundles tenant-bound repositories sharing one *gorm.DB handle.
// versions remembers the version of every aggregate loaded through it so
// Save can compare-and-swap against what was read.
type gormTx struct {
	db       *gorm.DB
	tenantID uuid.UUID
	outbox   OutboxWriter
	writable bool
	versions map[uuid.UUID]int
}

func newGormTx(db *gorm.DB, tenantID uuid.UUID, outbox OutboxWriter, writable bool) *gormTx {
	return &gormTx{
		db:       db,
		tenantID: tenantID,
		outbox:   outbox,
		writable: writable,
		versions: make(map[uuid.UUID]int),
	}
}

// scoped returns a fresh statement narrowed to the tenant
func (t *gormTx) scoped(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Scopes(tenant.Scope(t.tenantID))
}

// locked is scoped plus a row lock held until the transaction ends.
// Outside a transaction no lock is taken.
func (t *gormTx) locked(ctx context.Context) *gorm.DB {
	db := t.scoped(ctx)
	if t.writable {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (t *gormTx) checkWritable() error {
	if !t.writable {
		return errReadOnly
	}
	return nil
}

// preloadScope narrows association preloads to the tenant
func (t *gormTx) preloadScope(order string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return tenant.Scope(t.tenantID)(db).Order(order)
	}
}

func (t *gormTx) remember(id uuid.UUID, version int) {
	t.versions[id] = version
}

// expectedVersion is the version read for id, or the version before the
// latest in-memory mutation when the aggregate was not loaded through t
func (t *gormTx) expectedVersion(id uuid.UUID, current int) int {
	if v, ok := t.versions[id]; ok {
		return v
	}
	return current - 1
}

// TenantID returns the tenant every repository of t is bound to
func (t *gormTx) TenantID() uuid.UUID { return t.tenantID }

func (t *gormTx) Payments() ledger.PaymentRepository {
	return &paymentRepository{tx: t}
}

func (t *gormTx) Payables() ledger.PayableRepository {
	return &payableRepository{tx: t}
}

func (t *gormTx) Tickets() ledger.TicketRepository {
	return &ticketRepository{tx: t}
}

func (t *gormTx) Visas() ledger.VisaRepository {
	return &visaRepository{tx: t}
}

func (t *gormTx) Adjustments() ledger.AdjustmentRepository {
	return &adjustmentRepository{tx: t}
}

func (t *gormTx) Rates() ledger.RateRepository {
	return &rateRepository{tx: t}
}

func (t *gormTx) Outbox() ledger.EventRecorder {
	return &outboxRecorder{tx: t}
}

// outboxRecorder forwards events to the OutboxWriter within the transaction
type outboxRecorder struct {
	tx *gormTx
}

func (r *outboxRecorder) Record(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 || r.tx.outbox == nil {
		return nil
	}
	if !r.tx.writable {
		return errReadOnly
	}
	return r.tx.outbox.PublishWithTx(ctx, r.tx.db, events...)
}

var (
	_ ledger.Store = (*GormStore)(nil)
	_ ledger.Tx    = (*gormTx)(nil)
)
