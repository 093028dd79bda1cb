package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/travelops/backoffice/internal/domain/shared"
)

// Store is the only entry point to ledger persistence. Repositories are
// handed out already bound to one tenant, so a query without a tenant
// cannot be expressed.
type Store interface {
	// Tx runs fn inside one database transaction for tenantID. Any error
	// returned by fn rolls back every write made through tx.
	Tx(ctx context.Context, tenantID uuid.UUID, fn func(tx Tx) error) error
	// View runs fn with read-only repositories for tenantID, outside a transaction
	View(ctx context.Context, tenantID uuid.UUID, fn func(tx Tx) error) error
}

// Tx bundles the tenant-bound repositories of one unit of work
type Tx interface {
	TenantID() uuid.UUID
	Payments() PaymentRepository
	Payables() PayableRepository
	Tickets() TicketRepository
	Visas() VisaRepository
	Adjustments() AdjustmentRepository
	Rates() RateRepository
	// Outbox stores domain events for asynchronous delivery within the unit of work
	Outbox() EventRecorder
}

// EventRecorder appends domain events to the transactional outbox
type EventRecorder interface {
	Record(ctx context.Context, events ...shared.DomainEvent) error
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	shared.Filter
	Status          PaymentStatus
	OriginKind      OriginKind
	IncludeCanceled bool
}

// PayableFilter narrows payable listings
type PayableFilter struct {
	shared.Filter
	OriginKind      OriginKind
	OnlyOutstanding bool
	IncludeCanceled bool
}

// PaymentRepository persists payments together with their receipts
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByIDForUpdate loads the payment and holds a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByReceiptIDForUpdate locks the payment owning the receipt
	FindByReceiptIDForUpdate(ctx context.Context, receiptID uuid.UUID) (*Payment, error)
	// FindByOriginForUpdate locks every payment raised for origin, canceled ones included
	FindByOriginForUpdate(ctx context.Context, origin Origin) ([]*Payment, error)
	ExistsByOrigin(ctx context.Context, origin Origin) (bool, error)
	FindAll(ctx context.Context, filter PaymentFilter) ([]*Payment, int64, error)
	// FindOpen returns all non-canceled payments with their receipts
	FindOpen(ctx context.Context) ([]*Payment, error)
	Create(ctx context.Context, payment *Payment) error
	// Save writes the aggregate with a version check and upserts its receipts
	Save(ctx context.Context, payment *Payment) error
}

// PayableRepository persists payables together with their disbursements
type PayableRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payable, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payable, error)
	// FindByPaymentIDForUpdate locks the payable owning the disbursement
	FindByPaymentIDForUpdate(ctx context.Context, payablePaymentID uuid.UUID) (*Payable, error)
	FindByOriginForUpdate(ctx context.Context, origin Origin) ([]*Payable, error)
	ExistsByOrigin(ctx context.Context, origin Origin) (bool, error)
	FindAll(ctx context.Context, filter PayableFilter) ([]*Payable, int64, error)
	FindOpen(ctx context.Context) ([]*Payable, error)
	Create(ctx context.Context, payable *Payable) error
	Save(ctx context.Context, payable *Payable) error
}

// TicketRepository persists tickets
type TicketRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Ticket, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	Create(ctx context.Context, ticket *Ticket) error
	Save(ctx context.Context, ticket *Ticket) error
}

// VisaRepository persists visas
type VisaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Visa, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Visa, error)
	Create(ctx context.Context, visa *Visa) error
	Save(ctx context.Context, visa *Visa) error
}

// AdjustmentRepository is append-only
type AdjustmentRepository interface {
	Append(ctx context.Context, adjustment *TicketAdjustment) error
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]TicketAdjustment, error)
}

// RateRepository persists the tenant rate table
type RateRepository interface {
	FindAll(ctx context.Context) ([]CurrencyRate, error)
	FindByCurrencyForUpdate(ctx context.Context, c Currency) (*CurrencyRate, error)
	// NextRevision returns the revision to stamp on the next rate change
	NextRevision(ctx context.Context) (int64, error)
	Save(ctx context.Context, rate *CurrencyRate) error
}
