package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/shared"
)

// Source is a sale that raises payments and payables and can be canceled
// through the cascade
type Source interface {
	shared.AggregateRoot
	Origin() Origin
	IsCanceled() bool
	Cancel(at time.Time) error
}

// Ticket is an airline ticket sold to a customer
type Ticket struct {
	shared.TenantAggregateRoot
	TicketNumber  string
	PassengerName string
	Airline       string
	CustomerName  string
	VendorName    string
	Currency      Currency
	NetSales      decimal.Decimal
	NetCost       decimal.Decimal
	IssuedAt      time.Time
	CanceledAt    *time.Time
}

// TicketInput carries the fields of a newly sold ticket
type TicketInput struct {
	TicketNumber  string
	PassengerName string
	Airline       string
	CustomerName  string
	VendorName    string
	Currency      Currency
	NetSales      decimal.Decimal
	NetCost       decimal.Decimal
	IssuedAt      *time.Time
}

// NewTicket validates and creates a ticket
func NewTicket(tenantID uuid.UUID, in TicketInput) (*Ticket, error) {
	number := strings.TrimSpace(in.TicketNumber)
	if number == "" {
		return nil, validationError("INVALID_TICKET_NUMBER", "Ticket number is required")
	}
	if in.NetSales.IsNegative() || in.NetCost.IsNegative() {
		return nil, validationError(CodeInvalidAmount, "Net sales and net cost cannot be negative")
	}
	t := &Ticket{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TicketNumber:        number,
		PassengerName:       strings.TrimSpace(in.PassengerName),
		Airline:             strings.TrimSpace(in.Airline),
		CustomerName:        strings.TrimSpace(in.CustomerName),
		VendorName:          strings.TrimSpace(in.VendorName),
		Currency:            in.Currency,
		NetSales:            in.NetSales,
		NetCost:             in.NetCost,
		IssuedAt:            time.Now(),
	}
	if in.IssuedAt != nil {
		t.IssuedAt = *in.IssuedAt
	}
	return t, nil
}

// Origin returns the ticket as a ledger origin
func (t *Ticket) Origin() Origin {
	return TicketOrigin(t.ID)
}

// Profit returns net sales minus net cost
func (t *Ticket) Profit() decimal.Decimal {
	return t.NetSales.Sub(t.NetCost)
}

// IsCanceled reports whether the ticket was canceled
func (t *Ticket) IsCanceled() bool {
	return t.CanceledAt != nil
}

// Cancel flags the ticket as canceled
func (t *Ticket) Cancel(at time.Time) error {
	if t.IsCanceled() {
		return AlreadyCanceledError("Ticket")
	}
	t.CanceledAt = &at
	t.AddDomainEvent(NewSourceCanceledEvent(t.TenantID, t.Origin(), at))
	t.IncrementVersion()
	return nil
}

// Adjust revises the ticket economics and returns the audit record.
// Net sales must cover net cost and neither may be negative.
func (t *Ticket) Adjust(newNetSales, newNetCost decimal.Decimal, reason string, by uuid.UUID) (*TicketAdjustment, error) {
	if t.IsCanceled() {
		return nil, AlreadyCanceledError("Ticket")
	}
	if newNetCost.IsNegative() {
		return nil, InvalidAdjustmentError("Net cost cannot be negative")
	}
	if newNetSales.LessThan(newNetCost) {
		return nil, InvalidAdjustmentError("Net sales (%s) cannot be lower than net cost (%s)",
			newNetSales.StringFixed(2), newNetCost.StringFixed(2))
	}

	adj := &TicketAdjustment{
		ID:               uuid.New(),
		TenantID:         t.TenantID,
		TicketID:         t.ID,
		PreviousNetSales: t.NetSales,
		NewNetSales:      newNetSales,
		PreviousNetCost:  t.NetCost,
		NewNetCost:       newNetCost,
		Reason:           strings.TrimSpace(reason),
		AdjustedAt:       time.Now(),
	}
	if by != uuid.Nil {
		adj.AdjustedBy = &by
	}

	t.NetSales = newNetSales
	t.NetCost = newNetCost
	t.AddDomainEvent(NewTicketAdjustedEvent(t, adj))
	t.IncrementVersion()
	return adj, nil
}

// TicketAdjustment is the immutable audit record of a ticket revision
type TicketAdjustment struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	TicketID         uuid.UUID
	PreviousNetSales decimal.Decimal
	NewNetSales      decimal.Decimal
	PreviousNetCost  decimal.Decimal
	NewNetCost       decimal.Decimal
	Reason           string
	AdjustedBy       *uuid.UUID
	AdjustedAt       time.Time
}

// PreviousProfit returns the profit before the adjustment
func (a *TicketAdjustment) PreviousProfit() decimal.Decimal {
	return a.PreviousNetSales.Sub(a.PreviousNetCost)
}

// NewProfit returns the profit after the adjustment
func (a *TicketAdjustment) NewProfit() decimal.Decimal {
	return a.NewNetSales.Sub(a.NewNetCost)
}

// Visa is a visa application processed for a customer
type Visa struct {
	shared.TenantAggregateRoot
	ApplicationNumber string
	ApplicantName     string
	Country           string
	VisaType          string
	CustomerName      string
	VendorName        string
	Currency          Currency
	SalePrice         decimal.Decimal
	Cost              decimal.Decimal
	IssuedAt          time.Time
	CanceledAt        *time.Time
}

// VisaInput carries the fields of a newly issued visa
type VisaInput struct {
	ApplicationNumber string
	ApplicantName     string
	Country           string
	VisaType          string
	CustomerName      string
	VendorName        string
	Currency          Currency
	SalePrice         decimal.Decimal
	Cost              decimal.Decimal
	IssuedAt          *time.Time
}

// NewVisa validates and creates a visa
func NewVisa(tenantID uuid.UUID, in VisaInput) (*Visa, error) {
	number := strings.TrimSpace(in.ApplicationNumber)
	if number == "" {
		return nil, validationError("INVALID_APPLICATION_NUMBER", "Application number is required")
	}
	if in.SalePrice.IsNegative() || in.Cost.IsNegative() {
		return nil, validationError(CodeInvalidAmount, "Sale price and cost cannot be negative")
	}
	v := &Visa{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ApplicationNumber:   number,
		ApplicantName:       strings.TrimSpace(in.ApplicantName),
		Country:             strings.TrimSpace(in.Country),
		VisaType:            strings.TrimSpace(in.VisaType),
		CustomerName:        strings.TrimSpace(in.CustomerName),
		VendorName:          strings.TrimSpace(in.VendorName),
		Currency:            in.Currency,
		SalePrice:           in.SalePrice,
		Cost:                in.Cost,
		IssuedAt:            time.Now(),
	}
	if in.IssuedAt != nil {
		v.IssuedAt = *in.IssuedAt
	}
	return v, nil
}

// Origin returns the visa as a ledger origin
func (v *Visa) Origin() Origin {
	return VisaOrigin(v.ID)
}

// Profit returns sale price minus cost
func (v *Visa) Profit() decimal.Decimal {
	return v.SalePrice.Sub(v.Cost)
}

// IsCanceled reports whether the visa was canceled
func (v *Visa) IsCanceled() bool {
	return v.CanceledAt != nil
}

// Cancel flags the visa as canceled
func (v *Visa) Cancel(at time.Time) error {
	if v.IsCanceled() {
		return AlreadyCanceledError("Visa")
	}
	v.CanceledAt = &at
	v.AddDomainEvent(NewSourceCanceledEvent(v.TenantID, v.Origin(), at))
	v.IncrementVersion()
	return nil
}

var (
	_ Source = (*Ticket)(nil)
	_ Source = (*Visa)(nil)
)
