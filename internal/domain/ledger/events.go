package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypePayment      = "Payment"
	AggregateTypePayable      = "Payable"
	AggregateTypeTicket       = "Ticket"
	AggregateTypeVisa         = "Visa"
	AggregateTypeCurrencyRate = "CurrencyRate"
	AggregateTypeBooking      = "HajUmrahBooking"
	AggregateTypeShipment     = "CargoShipment"
)

// Event type constants
const (
	EventTypePaymentCreated            = "PaymentCreated"
	EventTypeReceiptRecorded           = "ReceiptRecorded"
	EventTypeReceiptVoided             = "ReceiptVoided"
	EventTypePaymentStatusChanged      = "PaymentStatusChanged"
	EventTypePayableCreated            = "PayableCreated"
	EventTypePayablePaymentSubmitted   = "PayablePaymentSubmitted"
	EventTypePayablePaymentApproved    = "PayablePaymentApproved"
	EventTypePayablePaymentPaid        = "PayablePaymentPaid"
	EventTypeSourceCanceled            = "SourceCanceled"
	EventTypeTicketAdjusted            = "TicketAdjusted"
	EventTypeCurrencyRateChanged       = "CurrencyRateChanged"
	EventTypeBookingConfirmed          = "HajUmrahBookingConfirmed"
	EventTypeShipmentCheckpointReached = "CargoShipmentCheckpointReached"
)

func aggregateTypeFor(o Origin) string {
	switch o.Kind() {
	case OriginTicket:
		return AggregateTypeTicket
	case OriginVisa:
		return AggregateTypeVisa
	case OriginBooking:
		return AggregateTypeBooking
	case OriginShipment:
		return AggregateTypeShipment
	}
	return ""
}

// PaymentCreatedEvent is raised when a customer payment is opened
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	OriginKind OriginKind      `json:"origin_kind"`
	OriginID   uuid.UUID       `json:"origin_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   Currency        `json:"currency"`
	BaseAmount decimal.Decimal `json:"base_amount"`
}

func NewPaymentCreatedEvent(p *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCreated, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		OriginKind:      p.Origin.Kind(),
		OriginID:        p.Origin.ID(),
		Amount:          p.Amount,
		Currency:        p.Currency,
		BaseAmount:      p.ExpectedTotal(),
	}
}

// ReceiptRecordedEvent is raised when a receipt is appended to a payment
type ReceiptRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	ReceiptID  uuid.UUID       `json:"receipt_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   Currency        `json:"currency"`
	RateToBase decimal.Decimal `json:"rate_to_base"`
	BaseAmount decimal.Decimal `json:"base_amount"`
	Method     PaymentMethod   `json:"method"`
}

func NewReceiptRecordedEvent(p *Payment, r *Receipt) *ReceiptRecordedEvent {
	return &ReceiptRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptRecorded, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		ReceiptID:       r.ID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		RateToBase:      r.RateToBase,
		BaseAmount:      r.BaseAmount(),
		Method:          r.Method,
	}
}

// ReceiptVoidedEvent is raised when a receipt is voided
type ReceiptVoidedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	ReceiptID  uuid.UUID       `json:"receipt_id"`
	BaseAmount decimal.Decimal `json:"base_amount"`
	Reason     string          `json:"reason"`
}

func NewReceiptVoidedEvent(p *Payment, r *Receipt) *ReceiptVoidedEvent {
	return &ReceiptVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptVoided, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		ReceiptID:       r.ID,
		BaseAmount:      r.BaseAmount(),
		Reason:          r.VoidReason,
	}
}

// PaymentStatusChangedEvent is raised whenever the derived status moves
type PaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	From      PaymentStatus   `json:"from"`
	To        PaymentStatus   `json:"to"`
	Balance   decimal.Decimal `json:"balance"`
}

func NewPaymentStatusChangedEvent(p *Payment, from, to PaymentStatus) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentStatusChanged, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		From:            from,
		To:              to,
		Balance:         p.Balance(),
	}
}

// PayableCreatedEvent is raised when a vendor payable is opened
type PayableCreatedEvent struct {
	shared.BaseDomainEvent
	PayableID  uuid.UUID       `json:"payable_id"`
	OriginKind OriginKind      `json:"origin_kind"`
	OriginID   uuid.UUID       `json:"origin_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   Currency        `json:"currency"`
}

func NewPayableCreatedEvent(p *Payable) *PayableCreatedEvent {
	return &PayableCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayableCreated, AggregateTypePayable, p.ID, p.TenantID),
		PayableID:       p.ID,
		OriginKind:      p.Origin.Kind(),
		OriginID:        p.Origin.ID(),
		Amount:          p.Amount,
		Currency:        p.Currency,
	}
}

// PayablePaymentEvent is shared by the disbursement lifecycle events
type PayablePaymentEvent struct {
	shared.BaseDomainEvent
	PayableID        uuid.UUID            `json:"payable_id"`
	PayablePaymentID uuid.UUID            `json:"payable_payment_id"`
	Amount           decimal.Decimal      `json:"amount"`
	Currency         Currency             `json:"currency"`
	Status           PayablePaymentStatus `json:"status"`
	Balance          decimal.Decimal      `json:"balance"`
	ActorID          *uuid.UUID           `json:"actor_id,omitempty"`
}

// PayablePaymentSubmittedEvent is raised when a disbursement is requested
type PayablePaymentSubmittedEvent struct{ PayablePaymentEvent }

// PayablePaymentApprovedEvent is raised when a disbursement is approved
type PayablePaymentApprovedEvent struct{ PayablePaymentEvent }

// PayablePaymentPaidEvent is raised when a disbursement is paid out
type PayablePaymentPaidEvent struct{ PayablePaymentEvent }

func newPayablePaymentEvent(eventType string, p *Payable, pp *PayablePayment, actor *uuid.UUID) PayablePaymentEvent {
	return PayablePaymentEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(eventType, AggregateTypePayable, p.ID, p.TenantID),
		PayableID:        p.ID,
		PayablePaymentID: pp.ID,
		Amount:           pp.Amount,
		Currency:         p.Currency,
		Status:           pp.Status,
		Balance:          p.Balance,
		ActorID:          actor,
	}
}

func NewPayablePaymentSubmittedEvent(p *Payable, pp *PayablePayment) *PayablePaymentSubmittedEvent {
	by := pp.RequestedBy
	return &PayablePaymentSubmittedEvent{newPayablePaymentEvent(EventTypePayablePaymentSubmitted, p, pp, &by)}
}

func NewPayablePaymentApprovedEvent(p *Payable, pp *PayablePayment) *PayablePaymentApprovedEvent {
	return &PayablePaymentApprovedEvent{newPayablePaymentEvent(EventTypePayablePaymentApproved, p, pp, pp.ApprovedBy)}
}

func NewPayablePaymentPaidEvent(p *Payable, pp *PayablePayment) *PayablePaymentPaidEvent {
	return &PayablePaymentPaidEvent{newPayablePaymentEvent(EventTypePayablePaymentPaid, p, pp, pp.PaidBy)}
}

// SourceCanceledEvent is raised when a ticket or visa is canceled
type SourceCanceledEvent struct {
	shared.BaseDomainEvent
	SourceKind OriginKind `json:"source_kind"`
	SourceID   uuid.UUID  `json:"source_id"`
	CanceledAt time.Time  `json:"canceled_at"`
}

func NewSourceCanceledEvent(tenantID uuid.UUID, origin Origin, at time.Time) *SourceCanceledEvent {
	return &SourceCanceledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSourceCanceled, aggregateTypeFor(origin), origin.ID(), tenantID),
		SourceKind:      origin.Kind(),
		SourceID:        origin.ID(),
		CanceledAt:      at,
	}
}

// TicketAdjustedEvent is raised when ticket economics are revised
type TicketAdjustedEvent struct {
	shared.BaseDomainEvent
	TicketID         uuid.UUID       `json:"ticket_id"`
	AdjustmentID     uuid.UUID       `json:"adjustment_id"`
	PreviousNetSales decimal.Decimal `json:"previous_net_sales"`
	NewNetSales      decimal.Decimal `json:"new_net_sales"`
	PreviousNetCost  decimal.Decimal `json:"previous_net_cost"`
	NewNetCost       decimal.Decimal `json:"new_net_cost"`
}

func NewTicketAdjustedEvent(t *Ticket, a *TicketAdjustment) *TicketAdjustedEvent {
	return &TicketAdjustedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeTicketAdjusted, AggregateTypeTicket, t.ID, t.TenantID),
		TicketID:         t.ID,
		AdjustmentID:     a.ID,
		PreviousNetSales: a.PreviousNetSales,
		NewNetSales:      a.NewNetSales,
		PreviousNetCost:  a.PreviousNetCost,
		NewNetCost:       a.NewNetCost,
	}
}

// CurrencyRateChangedEvent is raised when an administrator edits a rate
type CurrencyRateChangedEvent struct {
	shared.BaseDomainEvent
	Currency     Currency        `json:"currency"`
	PreviousRate decimal.Decimal `json:"previous_rate"`
	Rate         decimal.Decimal `json:"rate"`
	Revision     int64           `json:"revision"`
}

func NewCurrencyRateChangedEvent(r *CurrencyRate, previous decimal.Decimal) *CurrencyRateChangedEvent {
	return &CurrencyRateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCurrencyRateChanged, AggregateTypeCurrencyRate, r.ID, r.TenantID),
		Currency:        r.Currency,
		PreviousRate:    previous,
		Rate:            r.RateToUsd,
		Revision:        r.Revision,
	}
}

// OriginationTerms are the billing figures an upstream module attaches to
// the events that open a payment and payable
type OriginationTerms struct {
	Reference    string          `json:"reference"`
	CustomerName string          `json:"customer_name"`
	VendorName   string          `json:"vendor_name"`
	Currency     Currency        `json:"currency"`
	SaleAmount   decimal.Decimal `json:"sale_amount"`
	CostAmount   decimal.Decimal `json:"cost_amount"`
}

// BookingConfirmedEvent is published by the Haj/Umrah booking module
type BookingConfirmedEvent struct {
	shared.BaseDomainEvent
	BookingID uuid.UUID `json:"booking_id"`
	Campaign  string    `json:"campaign"`
	OriginationTerms
}

func NewBookingConfirmedEvent(tenantID, bookingID uuid.UUID, campaign string, terms OriginationTerms) *BookingConfirmedEvent {
	return &BookingConfirmedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeBookingConfirmed, AggregateTypeBooking, bookingID, tenantID),
		BookingID:        bookingID,
		Campaign:         campaign,
		OriginationTerms: terms,
	}
}

// ShipmentCheckpointReachedEvent is published by the cargo module when a
// shipment reaches a billing checkpoint
type ShipmentCheckpointReachedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID `json:"shipment_id"`
	Checkpoint string    `json:"checkpoint"`
	OriginationTerms
}

func NewShipmentCheckpointReachedEvent(tenantID, shipmentID uuid.UUID, checkpoint string, terms OriginationTerms) *ShipmentCheckpointReachedEvent {
	return &ShipmentCheckpointReachedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeShipmentCheckpointReached, AggregateTypeShipment, shipmentID, tenantID),
		ShipmentID:       shipmentID,
		Checkpoint:       checkpoint,
		OriginationTerms: terms,
	}
}
