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

var receiptUpsertColumns = []string{"voided_at", "voided_by", "void_reason"}

// paymentRepository implements ledger.PaymentRepository
type paymentRepository struct {
	tx *gormTx
}

func (r *paymentRepository) withReceipts(db *gorm.DB) *gorm.DB {
	return db.Preload("Receipts", r.tx.preloadScope("received_at ASC, created_at ASC"))
}

func (r *paymentRepository) first(db *gorm.DB, query string, args ...any) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.withReceipts(db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Payment")
		}
		return nil, err
	}
	return r.toDomain(&model)
}

func (r *paymentRepository) find(db *gorm.DB) ([]*ledger.Payment, error) {
	var rows []models.PaymentModel
	if err := r.withReceipts(db).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*ledger.Payment, 0, len(rows))
	for i := range rows {
		p, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *paymentRepository) toDomain(m *models.PaymentModel) (*ledger.Payment, error) {
	p, err := m.ToDomain()
	if err != nil {
		return nil, err
	}
	r.tx.remember(p.ID, p.Version)
	return p, nil
}

// FindByID finds a payment by ID
func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	return r.first(r.tx.scoped(ctx), "id = ?", id)
}

// FindByIDForUpdate finds a payment by ID and locks its row
func (r *paymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	return r.first(r.tx.locked(ctx), "id = ?", id)
}

// FindByReceiptIDForUpdate locks the payment that owns the receipt
func (r *paymentRepository) FindByReceiptIDForUpdate(ctx context.Context, receiptID uuid.UUID) (*ledger.Payment, error) {
	var receipt models.ReceiptModel
	if err := r.tx.scoped(ctx).Select("payment_id").First(&receipt, "id = ?", receiptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Receipt")
		}
		return nil, err
	}
	return r.FindByIDForUpdate(ctx, receipt.PaymentID)
}

// FindByOriginForUpdate locks every payment raised for origin
func (r *paymentRepository) FindByOriginForUpdate(ctx context.Context, origin ledger.Origin) ([]*ledger.Payment, error) {
	if origin.IsNone() {
		return nil, nil
	}
	return r.find(r.tx.locked(ctx).
		Where("origin_kind = ? AND origin_id = ?", origin.Kind(), origin.ID()).
		Order("created_at ASC"))
}

// ExistsByOrigin reports whether any payment was raised for origin
func (r *paymentRepository) ExistsByOrigin(ctx context.Context, origin ledger.Origin) (bool, error) {
	if origin.IsNone() {
		return false, nil
	}
	var count int64
	err := r.tx.scoped(ctx).Model(&models.PaymentModel{}).
		Where("origin_kind = ? AND origin_id = ?", origin.Kind(), origin.ID()).
		Count(&count).Error
	return count > 0, err
}

// FindAll lists payments with filtering and pagination
func (r *paymentRepository) FindAll(ctx context.Context, filter ledger.PaymentFilter) ([]*ledger.Payment, int64, error) {
	query := r.tx.scoped(ctx).Model(&models.PaymentModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OriginKind != "" {
		query = query.Where("origin_kind = ?", filter.OriginKind)
	}
	if !filter.IncludeCanceled {
		query = query.Where("canceled_at IS NULL")
	}
	if search, ok := filter.Filters["search"].(string); ok && search != "" {
		query = query.Where("customer_name LIKE ?", "%"+search+"%")
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, paymentSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	payments, err := r.find(query)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// FindOpen returns every non-canceled payment
func (r *paymentRepository) FindOpen(ctx context.Context) ([]*ledger.Payment, error) {
	return r.find(r.tx.scoped(ctx).Where("canceled_at IS NULL"))
}

// Create inserts a new payment with its receipts
func (r *paymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	model := models.PaymentModelFromDomain(payment)
	if err := r.tx.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	r.tx.remember(payment.ID, payment.Version)
	return r.upsertReceipts(ctx, payment)
}

// Save writes the payment if nobody else changed it since it was read, then
// upserts its receipts. Receipts are never deleted.
func (r *paymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	expected := r.tx.expectedVersion(payment.ID, payment.Version)
	model := models.PaymentModelFromDomain(payment)

	result := r.tx.scoped(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ? AND version = ?", payment.ID, expected).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by", clause.Associations).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errVersionConflict
	}
	r.tx.remember(payment.ID, payment.Version)
	return r.upsertReceipts(ctx, payment)
}

func (r *paymentRepository) upsertReceipts(ctx context.Context, payment *ledger.Payment) error {
	if len(payment.Receipts) == 0 {
		return nil
	}
	receipts := models.ReceiptModelsFromDomain(payment.Receipts)
	return r.tx.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(receiptUpsertColumns),
		}).
		Create(&receipts).Error
}

var _ ledger.PaymentRepository = (*paymentRepository)(nil)
