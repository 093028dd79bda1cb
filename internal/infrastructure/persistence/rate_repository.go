package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/infrastructure/persistence/models"
)

// rateRepository implements ledger.RateRepository
type rateRepository struct {
	tx *gormTx
}

// FindAll returns the tenant's rate table ordered by currency
func (r *rateRepository) FindAll(ctx context.Context) ([]ledger.CurrencyRate, error) {
	var rows []models.CurrencyRateModel
	if err := r.tx.scoped(ctx).Order("currency ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.CurrencyRate, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByCurrencyForUpdate locks the rate row of one currency
func (r *rateRepository) FindByCurrencyForUpdate(ctx context.Context, c ledger.Currency) (*ledger.CurrencyRate, error) {
	var model models.CurrencyRateModel
	if err := r.tx.locked(ctx).First(&model, "currency = ?", string(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Currency rate")
		}
		return nil, err
	}
	rate := model.ToDomain()
	return &rate, nil
}

// NextRevision returns one past the highest revision stored for the tenant
func (r *rateRepository) NextRevision(ctx context.Context) (int64, error) {
	var current int64
	if err := r.tx.scoped(ctx).
		Model(&models.CurrencyRateModel{}).
		Select("COALESCE(MAX(revision), 0)").
		Scan(&current).Error; err != nil {
		return 0, err
	}
	return current + 1, nil
}

// Save updates the rate row of the currency, inserting it on first use.
// The unique (tenant_id, currency) index turns a lost insert race into an error.
func (r *rateRepository) Save(ctx context.Context, rate *ledger.CurrencyRate) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	model := models.CurrencyRateModelFromDomain(rate)
	result := r.tx.scoped(ctx).
		Model(&models.CurrencyRateModel{}).
		Where("id = ?", rate.ID).
		Select("rate_to_usd", "revision", "updated_by", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	return r.tx.db.WithContext(ctx).Create(model).Error
}

var _ ledger.RateRepository = (*rateRepository)(nil)
