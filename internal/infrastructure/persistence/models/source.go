package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/ledger"
)

// TicketModel is the persistence model for an airline ticket
type TicketModel struct {
	TenantAggregateModel
	TicketNumber  string          `gorm:"type:varchar(50);not null;index"`
	PassengerName string          `gorm:"type:varchar(200)"`
	Airline       string          `gorm:"type:varchar(100)"`
	CustomerName  string          `gorm:"type:varchar(200)"`
	VendorName    string          `gorm:"type:varchar(200)"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	NetSales      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NetCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IssuedAt      time.Time       `gorm:"not null"`
	CanceledAt    *time.Time
}

// TableName returns the table name for GORM
func (TicketModel) TableName() string {
	return "tickets"
}

// ToDomain converts the model to a Ticket
func (m *TicketModel) ToDomain() *ledger.Ticket {
	t := &ledger.Ticket{
		TicketNumber:  m.TicketNumber,
		PassengerName: m.PassengerName,
		Airline:       m.Airline,
		CustomerName:  m.CustomerName,
		VendorName:    m.VendorName,
		Currency:      ledger.Currency(m.Currency),
		NetSales:      m.NetSales,
		NetCost:       m.NetCost,
		IssuedAt:      m.IssuedAt,
		CanceledAt:    m.CanceledAt,
	}
	m.PopulateTenantAggregateRoot(&t.TenantAggregateRoot)
	return t
}

// TicketModelFromDomain builds a model from a Ticket
func TicketModelFromDomain(t *ledger.Ticket) *TicketModel {
	m := &TicketModel{
		TicketNumber:  t.TicketNumber,
		PassengerName: t.PassengerName,
		Airline:       t.Airline,
		CustomerName:  t.CustomerName,
		VendorName:    t.VendorName,
		Currency:      string(t.Currency),
		NetSales:      t.NetSales,
		NetCost:       t.NetCost,
		IssuedAt:      t.IssuedAt,
		CanceledAt:    t.CanceledAt,
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	return m
}

// TicketAdjustmentModel is the append-only audit row of a ticket revision
type TicketAdjustmentModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	TicketID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	PreviousNetSales decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewNetSales      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PreviousNetCost  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewNetCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason           string          `gorm:"type:varchar(500)"`
	AdjustedBy       *uuid.UUID      `gorm:"type:uuid"`
	AdjustedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TicketAdjustmentModel) TableName() string {
	return "ticket_adjustments"
}

// ToDomain converts the model to a TicketAdjustment
func (m *TicketAdjustmentModel) ToDomain() ledger.TicketAdjustment {
	return ledger.TicketAdjustment{
		ID:               m.ID,
		TenantID:         m.TenantID,
		TicketID:         m.TicketID,
		PreviousNetSales: m.PreviousNetSales,
		NewNetSales:      m.NewNetSales,
		PreviousNetCost:  m.PreviousNetCost,
		NewNetCost:       m.NewNetCost,
		Reason:           m.Reason,
		AdjustedBy:       m.AdjustedBy,
		AdjustedAt:       m.AdjustedAt,
	}
}

// TicketAdjustmentModelFromDomain builds a model from a TicketAdjustment
func TicketAdjustmentModelFromDomain(a *ledger.TicketAdjustment) *TicketAdjustmentModel {
	return &TicketAdjustmentModel{
		ID:               a.ID,
		TenantID:         a.TenantID,
		TicketID:         a.TicketID,
		PreviousNetSales: a.PreviousNetSales,
		NewNetSales:      a.NewNetSales,
		PreviousNetCost:  a.PreviousNetCost,
		NewNetCost:       a.NewNetCost,
		Reason:           a.Reason,
		AdjustedBy:       a.AdjustedBy,
		AdjustedAt:       a.AdjustedAt,
	}
}

// VisaModel is the persistence model for a visa application
type VisaModel struct {
	TenantAggregateModel
	ApplicationNumber string          `gorm:"type:varchar(50);not null;index"`
	ApplicantName     string          `gorm:"type:varchar(200)"`
	Country           string          `gorm:"type:varchar(100)"`
	VisaType          string          `gorm:"type:varchar(50)"`
	CustomerName      string          `gorm:"type:varchar(200)"`
	VendorName        string          `gorm:"type:varchar(200)"`
	Currency          string          `gorm:"type:varchar(3);not null"`
	SalePrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Cost              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IssuedAt          time.Time       `gorm:"not null"`
	CanceledAt        *time.Time
}

// TableName returns the table name for GORM
func (VisaModel) TableName() string {
	return "visas"
}

// ToDomain converts the model to a Visa
func (m *VisaModel) ToDomain() *ledger.Visa {
	v := &ledger.Visa{
		ApplicationNumber: m.ApplicationNumber,
		ApplicantName:     m.ApplicantName,
		Country:           m.Country,
		VisaType:          m.VisaType,
		CustomerName:      m.CustomerName,
		VendorName:        m.VendorName,
		Currency:          ledger.Currency(m.Currency),
		SalePrice:         m.SalePrice,
		Cost:              m.Cost,
		IssuedAt:          m.IssuedAt,
		CanceledAt:        m.CanceledAt,
	}
	m.PopulateTenantAggregateRoot(&v.TenantAggregateRoot)
	return v
}

// VisaModelFromDomain builds a model from a Visa
func VisaModelFromDomain(v *ledger.Visa) *VisaModel {
	m := &VisaModel{
		ApplicationNumber: v.ApplicationNumber,
		ApplicantName:     v.ApplicantName,
		Country:           v.Country,
		VisaType:          v.VisaType,
		CustomerName:      v.CustomerName,
		VendorName:        v.VendorName,
		Currency:          string(v.Currency),
		SalePrice:         v.SalePrice,
		Cost:              v.Cost,
		IssuedAt:          v.IssuedAt,
		CanceledAt:        v.CanceledAt,
	}
	m.FromDomainTenantAggregateRoot(v.TenantAggregateRoot)
	return m
}
