package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/ledger"
)

// PayableModel is the persistence model for a vendor payable
type PayableModel struct {
	TenantAggregateModel
	OriginKind string                `gorm:"type:varchar(20);not null;index:idx_payables_origin,priority:1"`
	OriginID   *uuid.UUID            `gorm:"type:uuid;index:idx_payables_origin,priority:2"`
	VendorName string                `gorm:"type:varchar(200)"`
	Amount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Balance    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Currency   string                `gorm:"type:varchar(3);not null"`
	RateToBase decimal.Decimal       `gorm:"type:decimal(20,10);not null"`
	CanceledAt *time.Time            `gorm:"index"`
	Payments   []PayablePaymentModel `gorm:"foreignKey:PayableID;references:ID"`
}

// TableName returns the table name for GORM
func (PayableModel) TableName() string {
	return "payables"
}

// ToDomain converts the model and its loaded disbursements to a Payable aggregate
func (m *PayableModel) ToDomain() (*ledger.Payable, error) {
	origin, err := ledger.NewOrigin(ledger.OriginKind(m.OriginKind), m.OriginID)
	if err != nil {
		return nil, err
	}
	p := &ledger.Payable{
		Origin:     origin,
		VendorName: m.VendorName,
		Amount:     m.Amount,
		Balance:    m.Balance,
		Currency:   ledger.Currency(m.Currency),
		RateToBase: m.RateToBase,
		CanceledAt: m.CanceledAt,
		Payments:   make([]ledger.PayablePayment, len(m.Payments)),
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	for i := range m.Payments {
		p.Payments[i] = m.Payments[i].ToDomain()
	}
	return p, nil
}

// PayableModelFromDomain builds a model from a Payable without its disbursements
func PayableModelFromDomain(p *ledger.Payable) *PayableModel {
	m := &PayableModel{
		OriginKind: string(p.Origin.Kind()),
		OriginID:   p.Origin.IDPtr(),
		VendorName: p.VendorName,
		Amount:     p.Amount,
		Balance:    p.Balance,
		Currency:   string(p.Currency),
		RateToBase: p.RateToBase,
		CanceledAt: p.CanceledAt,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// PayablePaymentModel is the persistence model for a disbursement request
type PayablePaymentModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PayableID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method      string          `gorm:"type:varchar(20)"`
	Status      string          `gorm:"type:varchar(20);not null;index"`
	Reference   string          `gorm:"type:varchar(100)"`
	PaymentDate *time.Time
	RequestedBy uuid.UUID  `gorm:"type:uuid"`
	RequestedAt time.Time  `gorm:"not null"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	PaidBy      *uuid.UUID `gorm:"type:uuid"`
	PaidAt      *time.Time
}

// TableName returns the table name for GORM
func (PayablePaymentModel) TableName() string {
	return "payable_payments"
}

// ToDomain converts the model to a PayablePayment
func (m *PayablePaymentModel) ToDomain() ledger.PayablePayment {
	return ledger.PayablePayment{
		ID:          m.ID,
		TenantID:    m.TenantID,
		PayableID:   m.PayableID,
		Amount:      m.Amount,
		Method:      ledger.PaymentMethod(m.Method),
		Status:      ledger.PayablePaymentStatus(m.Status),
		Reference:   m.Reference,
		PaymentDate: m.PaymentDate,
		RequestedBy: m.RequestedBy,
		RequestedAt: m.RequestedAt,
		ApprovedBy:  m.ApprovedBy,
		ApprovedAt:  m.ApprovedAt,
		PaidBy:      m.PaidBy,
		PaidAt:      m.PaidAt,
	}
}

// PayablePaymentModelsFromDomain converts the disbursements of a payable
func PayablePaymentModelsFromDomain(payments []ledger.PayablePayment) []PayablePaymentModel {
	out := make([]PayablePaymentModel, len(payments))
	for i, pp := range payments {
		out[i] = PayablePaymentModel{
			ID:          pp.ID,
			TenantID:    pp.TenantID,
			PayableID:   pp.PayableID,
			Amount:      pp.Amount,
			Method:      string(pp.Method),
			Status:      string(pp.Status),
			Reference:   pp.Reference,
			PaymentDate: pp.PaymentDate,
			RequestedBy: pp.RequestedBy,
			RequestedAt: pp.RequestedAt,
			ApprovedBy:  pp.ApprovedBy,
			ApprovedAt:  pp.ApprovedAt,
			PaidBy:      pp.PaidBy,
			PaidAt:      pp.PaidAt,
		}
	}
	return out
}
