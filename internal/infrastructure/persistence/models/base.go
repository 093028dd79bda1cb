package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/travelops/backoffice/internal/domain/shared"
)

// TenantAggregateModel provides the persistence fields shared by every
// tenant-scoped aggregate root, including the optimistic lock version
type TenantAggregateModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
	Version   int        `gorm:"not null;default:1"`
}

// FromDomainTenantAggregateRoot populates the model from a domain aggregate root
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(a shared.TenantAggregateRoot) {
	m.ID = a.ID
	m.TenantID = a.TenantID
	m.CreatedBy = a.CreatedBy
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// PopulateTenantAggregateRoot copies the persisted fields onto a domain aggregate root
func (m *TenantAggregateModel) PopulateTenantAggregateRoot(a *shared.TenantAggregateRoot) {
	a.ID = m.ID
	a.TenantID = m.TenantID
	a.CreatedBy = m.CreatedBy
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	a.Version = m.Version
}

// All returns every model managed by AutoMigrate, parents before children
func All() []any {
	return []any{
		&CurrencyRateModel{},
		&TicketModel{},
		&TicketAdjustmentModel{},
		&VisaModel{},
		&PaymentModel{},
		&ReceiptModel{},
		&PayableModel{},
		&PayablePaymentModel{},
		&OutboxEntryModel{},
	}
}
