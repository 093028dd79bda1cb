package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/ledger"
)

// PaymentModel is the persistence model for a customer payment
type PaymentModel struct {
	TenantAggregateModel
	OriginKind   string          `gorm:"type:varchar(20);not null;index:idx_payments_origin,priority:1"`
	OriginID     *uuid.UUID      `gorm:"type:uuid;index:idx_payments_origin,priority:2"`
	CustomerName string          `gorm:"type:varchar(200)"`
	Description  string          `gorm:"type:text"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency     string          `gorm:"type:varchar(3);not null"`
	RateToBase   decimal.Decimal `gorm:"type:decimal(20,10);not null"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	ExpectedDate *time.Time
	CanceledAt   *time.Time     `gorm:"index"`
	Receipts     []ReceiptModel `gorm:"foreignKey:PaymentID;references:ID"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model and its loaded receipts to a Payment aggregate
func (m *PaymentModel) ToDomain() (*ledger.Payment, error) {
	origin, err := ledger.NewOrigin(ledger.OriginKind(m.OriginKind), m.OriginID)
	if err != nil {
		return nil, err
	}
	p := &ledger.Payment{
		Origin:       origin,
		CustomerName: m.CustomerName,
		Description:  m.Description,
		Amount:       m.Amount,
		Currency:     ledger.Currency(m.Currency),
		RateToBase:   m.RateToBase,
		Status:       ledger.PaymentStatus(m.Status),
		ExpectedDate: m.ExpectedDate,
		CanceledAt:   m.CanceledAt,
		Receipts:     make([]ledger.Receipt, len(m.Receipts)),
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	for i := range m.Receipts {
		p.Receipts[i] = m.Receipts[i].ToDomain()
	}
	return p, nil
}

// PaymentModelFromDomain builds a model from a Payment. Receipts are
// converted separately since they are upserted on their own.
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{
		OriginKind:   string(p.Origin.Kind()),
		OriginID:     p.Origin.IDPtr(),
		CustomerName: p.CustomerName,
		Description:  p.Description,
		Amount:       p.Amount,
		Currency:     string(p.Currency),
		RateToBase:   p.RateToBase,
		Status:       string(p.Status),
		ExpectedDate: p.ExpectedDate,
		CanceledAt:   p.CanceledAt,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// ReceiptModel is the persistence model for a receipt. Rows are never deleted.
type ReceiptModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	RateToBase      decimal.Decimal `gorm:"type:decimal(20,10);not null"`
	Method          string          `gorm:"type:varchar(20)"`
	CollectionPoint string          `gorm:"type:varchar(20)"`
	Reference       string          `gorm:"type:varchar(100)"`
	ReceivedBy      uuid.UUID       `gorm:"type:uuid"`
	ReceivedAt      time.Time       `gorm:"not null"`
	VoidedAt        *time.Time
	VoidedBy        *uuid.UUID `gorm:"type:uuid"`
	VoidReason      string     `gorm:"type:varchar(500)"`
	CreatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the model to a Receipt
func (m *ReceiptModel) ToDomain() ledger.Receipt {
	return ledger.Receipt{
		ID:              m.ID,
		TenantID:        m.TenantID,
		PaymentID:       m.PaymentID,
		Amount:          m.Amount,
		Currency:        ledger.Currency(m.Currency),
		RateToBase:      m.RateToBase,
		Method:          ledger.PaymentMethod(m.Method),
		CollectionPoint: ledger.CollectionPoint(m.CollectionPoint),
		Reference:       m.Reference,
		ReceivedBy:      m.ReceivedBy,
		ReceivedAt:      m.ReceivedAt,
		VoidedAt:        m.VoidedAt,
		VoidedBy:        m.VoidedBy,
		VoidReason:      m.VoidReason,
		CreatedAt:       m.CreatedAt,
	}
}

// ReceiptModelsFromDomain converts the receipts of a payment
func ReceiptModelsFromDomain(receipts []ledger.Receipt) []ReceiptModel {
	out := make([]ReceiptModel, len(receipts))
	for i, r := range receipts {
		out[i] = ReceiptModel{
			ID:              r.ID,
			TenantID:        r.TenantID,
			PaymentID:       r.PaymentID,
			Amount:          r.Amount,
			Currency:        string(r.Currency),
			RateToBase:      r.RateToBase,
			Method:          string(r.Method),
			CollectionPoint: string(r.CollectionPoint),
			Reference:       r.Reference,
			ReceivedBy:      r.ReceivedBy,
			ReceivedAt:      r.ReceivedAt,
			VoidedAt:        r.VoidedAt,
			VoidedBy:        r.VoidedBy,
			VoidReason:      r.VoidReason,
			CreatedAt:       r.CreatedAt,
		}
	}
	return out
}
