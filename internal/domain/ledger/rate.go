package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyRate is one row of a tenant's rate table
type CurrencyRate struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Currency  Currency
	RateToUsd decimal.Decimal
	// Revision is the tenant-wide rate table version at which this row last changed
	Revision  int64
	UpdatedBy *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCurrencyRate validates and creates a rate row
func NewCurrencyRate(tenantID uuid.UUID, c Currency, rateToUsd decimal.Decimal) (*CurrencyRate, error) {
	if c.IsBase() {
		return nil, validationError(CodeInvalidCurrency, "%s is the base currency and is always 1", BaseCurrency)
	}
	if !rateToUsd.IsPositive() {
		return nil, validationError(CodeInvalidAmount, "Rate for %s must be greater than zero", c)
	}
	now := time.Now()
	return &CurrencyRate{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Currency:  c,
		RateToUsd: rateToUsd,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Change sets a new rate at the given table revision
func (r *CurrencyRate) Change(rateToUsd decimal.Decimal, revision int64, by uuid.UUID) error {
	if !rateToUsd.IsPositive() {
		return validationError(CodeInvalidAmount, "Rate for %s must be greater than zero", r.Currency)
	}
	r.RateToUsd = rateToUsd
	r.Revision = revision
	if by != uuid.Nil {
		r.UpdatedBy = &by
	}
	r.UpdatedAt = time.Now()
	return nil
}

// BuildRateTable turns persisted rows into a snapshot. The snapshot version
// is the highest row revision.
func BuildRateTable(rows []CurrencyRate) RateTable {
	rates := make(map[Currency]decimal.Decimal, len(rows))
	var version int64
	for _, r := range rows {
		rates[r.Currency] = r.RateToUsd
		if r.Revision > version {
			version = r.Revision
		}
	}
	return NewRateTable(version, rates)
}
