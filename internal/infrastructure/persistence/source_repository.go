package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/infrastructure/persistence/models"
)

// ticketRepository implements ledger.TicketRepository
type ticketRepository struct {
	tx *gormTx
}

func (r *ticketRepository) first(db *gorm.DB, id uuid.UUID) (*ledger.Ticket, error) {
	var model models.TicketModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Ticket")
		}
		return nil, err
	}
	t := model.ToDomain()
	r.tx.remember(t.ID, t.Version)
	return t, nil
}

// FindByID finds a ticket by ID
func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Ticket, error) {
	return r.first(r.tx.scoped(ctx), id)
}

// FindByIDForUpdate finds a ticket by ID and locks its row
func (r *ticketRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Ticket, error) {
	return r.first(r.tx.locked(ctx), id)
}

// ExistsByNumber reports whether the tenant already has a ticket with this number
func (r *ticketRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.tx.scoped(ctx).Model(&models.TicketModel{}).
		Where("ticket_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a new ticket
func (r *ticketRepository) Create(ctx context.Context, ticket *ledger.Ticket) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if err := r.tx.db.WithContext(ctx).Create(models.TicketModelFromDomain(ticket)).Error; err != nil {
		return err
	}
	r.tx.remember(ticket.ID, ticket.Version)
	return nil
}

// Save writes the ticket under a version check
func (r *ticketRepository) Save(ctx context.Context, ticket *ledger.Ticket) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	return saveVersioned(ctx, r.tx, &models.TicketModel{}, ticket.ID, ticket.Version, models.TicketModelFromDomain(ticket))
}

// visaRepository implements ledger.VisaRepository
type visaRepository struct {
	tx *gormTx
}

func (r *visaRepository) first(db *gorm.DB, id uuid.UUID) (*ledger.Visa, error) {
	var model models.VisaModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Visa")
		}
		return nil, err
	}
	v := model.ToDomain()
	r.tx.remember(v.ID, v.Version)
	return v, nil
}

// FindByID finds a visa by ID
func (r *visaRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Visa, error) {
	return r.first(r.tx.scoped(ctx), id)
}

// FindByIDForUpdate finds a visa by ID and locks its row
func (r *visaRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Visa, error) {
	return r.first(r.tx.locked(ctx), id)
}

// Create inserts a new visa
func (r *visaRepository) Create(ctx context.Context, visa *ledger.Visa) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if err := r.tx.db.WithContext(ctx).Create(models.VisaModelFromDomain(visa)).Error; err != nil {
		return err
	}
	r.tx.remember(visa.ID, visa.Version)
	return nil
}

// Save writes the visa under a version check
func (r *visaRepository) Save(ctx context.Context, visa *ledger.Visa) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	return saveVersioned(ctx, r.tx, &models.VisaModel{}, visa.ID, visa.Version, models.VisaModelFromDomain(visa))
}

// adjustmentRepository implements ledger.AdjustmentRepository
type adjustmentRepository struct {
	tx *gormTx
}

// Append inserts an adjustment row. Rows are never updated.
func (r *adjustmentRepository) Append(ctx context.Context, adjustment *ledger.TicketAdjustment) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	return r.tx.db.WithContext(ctx).Create(models.TicketAdjustmentModelFromDomain(adjustment)).Error
}

// ListByTicket returns the adjustment history of a ticket, oldest first
func (r *adjustmentRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]ledger.TicketAdjustment, error) {
	var rows []models.TicketAdjustmentModel
	if err := r.tx.scoped(ctx).
		Where("ticket_id = ?", ticketID).
		Order("adjusted_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.TicketAdjustment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// saveVersioned updates every column of a flat aggregate model when the
// stored version still matches what this unit of work read
func saveVersioned(ctx context.Context, tx *gormTx, table any, id uuid.UUID, version int, model any) error {
	result := tx.scoped(ctx).
		Model(table).
		Where("id = ? AND version = ?", id, tx.expectedVersion(id, version)).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errVersionConflict
	}
	tx.remember(id, version)
	return nil
}

var (
	_ ledger.TicketRepository     = (*ticketRepository)(nil)
	_ ledger.VisaRepository       = (*visaRepository)(nil)
	_ ledger.AdjustmentRepository = (*adjustmentRepository)(nil)
)
