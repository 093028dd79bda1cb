package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/ledger"
)

// CurrencyRateModel is one row of a tenant's rate table
type CurrencyRateModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_currency_rates_tenant_currency,priority:1"`
	Currency  string          `gorm:"type:varchar(3);not null;uniqueIndex:idx_currency_rates_tenant_currency,priority:2"`
	RateToUsd decimal.Decimal `gorm:"type:decimal(20,10);not null"`
	Revision  int64           `gorm:"not null"`
	UpdatedBy *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CurrencyRateModel) TableName() string {
	return "currency_rates"
}

// ToDomain converts the model to a CurrencyRate
func (m *CurrencyRateModel) ToDomain() ledger.CurrencyRate {
	return ledger.CurrencyRate{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Currency:  ledger.Currency(m.Currency),
		RateToUsd: m.RateToUsd,
		Revision:  m.Revision,
		UpdatedBy: m.UpdatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CurrencyRateModelFromDomain builds a model from a CurrencyRate
func CurrencyRateModelFromDomain(r *ledger.CurrencyRate) *CurrencyRateModel {
	return &CurrencyRateModel{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Currency:  string(r.Currency),
		RateToUsd: r.RateToUsd,
		Revision:  r.Revision,
		UpdatedBy: r.UpdatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
