package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/infrastructure/persistence/models"
)

var payablePaymentUpsertColumns = []string{"status", "approved_by", "approved_at", "paid_by", "paid_at"}

// payableRepository implements ledger.PayableRepository
type payableRepository struct {
	tx *gormTx
}

func (r *payableRepository) withPayments(db *gorm.DB) *gorm.DB {
	return db.Preload("Payments", r.tx.preloadScope("requested_at ASC"))
}

func (r *payableRepository) first(db *gorm.DB, query string, args ...any) (*ledger.Payable, error) {
	var model models.PayableModel
	if err := r.withPayments(db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Payable")
		}
		return nil, err
	}
	return r.toDomain(&model)
}

func (r *payableRepository) find(db *gorm.DB) ([]*ledger.Payable, error) {
	var rows []models.PayableModel
	if err := r.withPayments(db).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*ledger.Payable, 0, len(rows))
	for i := range rows {
		p, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *payableRepository) toDomain(m *models.PayableModel) (*ledger.Payable, error) {
	p, err := m.ToDomain()
	if err != nil {
		return nil, err
	}
	r.tx.remember(p.ID, p.Version)
	return p, nil
}

// FindByID finds a payable by ID
func (r *payableRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payable, error) {
	return r.first(r.tx.scoped(ctx), "id = ?", id)
}

// FindByIDForUpdate finds a payable by ID and locks its row
func (r *payableRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Payable, error) {
	return r.first(r.tx.locked(ctx), "id = ?", id)
}

// FindByPaymentIDForUpdate locks the payable that owns the disbursement
func (r *payableRepository) FindByPaymentIDForUpdate(ctx context.Context, payablePaymentID uuid.UUID) (*ledger.Payable, error) {
	var pp models.PayablePaymentModel
	if err := r.tx.scoped(ctx).Select("payable_id").First(&pp, "id = ?", payablePaymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Payable payment")
		}
		return nil, err
	}
	return r.FindByIDForUpdate(ctx, pp.PayableID)
}

// FindByOriginForUpdate locks every payable raised for origin
func (r *payableRepository) FindByOriginForUpdate(ctx context.Context, origin ledger.Origin) ([]*ledger.Payable, error) {
	if origin.IsNone() {
		return nil, nil
	}
	return r.find(r.tx.locked(ctx).
		Where("origin_kind = ? AND origin_id = ?", origin.Kind(), origin.ID()).
		Order("created_at ASC"))
}

// ExistsByOrigin reports whether any payable was raised for origin
func (r *payableRepository) ExistsByOrigin(ctx context.Context, origin ledger.Origin) (bool, error) {
	if origin.IsNone() {
		return false, nil
	}
	var count int64
	err := r.tx.scoped(ctx).Model(&models.PayableModel{}).
		Where("origin_kind = ? AND origin_id = ?", origin.Kind(), origin.ID()).
		Count(&count).Error
	return count > 0, err
}

// FindAll lists payables with filtering and pagination
func (r *payableRepository) FindAll(ctx context.Context, filter ledger.PayableFilter) ([]*ledger.Payable, int64, error) {
	query := r.tx.scoped(ctx).Model(&models.PayableModel{})
	if filter.OriginKind != "" {
		query = query.Where("origin_kind = ?", filter.OriginKind)
	}
	if filter.OnlyOutstanding {
		query = query.Where("balance > 0")
	}
	if !filter.IncludeCanceled {
		query = query.Where("canceled_at IS NULL")
	}
	if search, ok := filter.Filters["search"].(string); ok && search != "" {
		query = query.Where("vendor_name LIKE ?", "%"+search+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, payableSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	payables, err := r.find(query)
	if err != nil {
		return nil, 0, err
	}
	return payables, total, nil
}

// FindOpen returns every non-canceled payable
func (r *payableRepository) FindOpen(ctx context.Context) ([]*ledger.Payable, error) {
	return r.find(r.tx.scoped(ctx).Where("canceled_at IS NULL"))
}

// Create inserts a new payable with its disbursements
func (r *payableRepository) Create(ctx context.Context, payable *ledger.Payable) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	model := models.PayableModelFromDomain(payable)
	if err := r.tx.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	r.tx.remember(payable.ID, payable.Version)
	return r.upsertPayments(ctx, payable)
}

// Save writes the payable under a version check and upserts its disbursements
func (r *payableRepository) Save(ctx context.Context, payable *ledger.Payable) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	expected := r.tx.expectedVersion(payable.ID, payable.Version)
	model := models.PayableModelFromDomain(payable)

	result := r.tx.scoped(ctx).
		Model(&models.PayableModel{}).
		Where("id = ? AND version = ?", payable.ID, expected).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by", clause.Associations).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errVersionConflict
	}
	r.tx.remember(payable.ID, payable.Version)
	return r.upsertPayments(ctx, payable)
}

func (r *payableRepository) upsertPayments(ctx context.Context, payable *ledger.Payable) error {
	if len(payable.Payments) == 0 {
		return nil
	}
	payments := models.PayablePaymentModelsFromDomain(payable.Payments)
	return r.tx.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(payablePaymentUpsertColumns),
		}).
		Create(&payments).Error
}

var _ ledger.PayableRepository = (*payableRepository)(nil)
