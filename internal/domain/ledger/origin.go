package ledger

import (
	"github.com/google/uuid"
)

// OriginKind tags the kind of record a payment or payable was raised for
type OriginKind string

const (
	OriginNone     OriginKind = "none"
	OriginTicket   OriginKind = "ticket"
	OriginVisa     OriginKind = "visa"
	OriginBooking  OriginKind = "booking"
	OriginShipment OriginKind = "shipment"
)

// IsValid checks if the kind is known
func (k OriginKind) IsValid() bool {
	switch k {
	case OriginNone, OriginTicket, OriginVisa, OriginBooking, OriginShipment:
		return true
	}
	return false
}

// String returns the string representation of OriginKind
func (k OriginKind) String() string {
	return string(k)
}

// IsCancelableSource reports whether records of this kind can be canceled
// through the cascade
func (k OriginKind) IsCancelableSource() bool {
	return k == OriginTicket || k == OriginVisa
}

// Origin references the single record a ledger entry was raised for.
// Only one reference can be held, so the zero value means "no origin".
type Origin struct {
	kind OriginKind
	id   uuid.UUID
}

func NoOrigin() Origin                   { return Origin{kind: OriginNone} }
func TicketOrigin(id uuid.UUID) Origin   { return Origin{kind: OriginTicket, id: id} }
func VisaOrigin(id uuid.UUID) Origin     { return Origin{kind: OriginVisa, id: id} }
func BookingOrigin(id uuid.UUID) Origin  { return Origin{kind: OriginBooking, id: id} }
func ShipmentOrigin(id uuid.UUID) Origin { return Origin{kind: OriginShipment, id: id} }

// NewOrigin rebuilds an origin from its persisted parts
func NewOrigin(kind OriginKind, id *uuid.UUID) (Origin, error) {
	if kind == "" || kind == OriginNone {
		if id != nil && *id != uuid.Nil {
			return Origin{}, validationError(CodeInvalidOrigin, "An origin id requires an origin kind")
		}
		return NoOrigin(), nil
	}
	if !kind.IsValid() {
		return Origin{}, validationError(CodeInvalidOrigin, "Unknown origin kind %q", kind)
	}
	if id == nil || *id == uuid.Nil {
		return Origin{}, validationError(CodeInvalidOrigin, "Origin %s requires an id", kind)
	}
	return Origin{kind: kind, id: *id}, nil
}

// Kind returns the origin kind
func (o Origin) Kind() OriginKind {
	if o.kind == "" {
		return OriginNone
	}
	return o.kind
}

// ID returns the referenced record id, or uuid.Nil when there is none
func (o Origin) ID() uuid.UUID {
	return o.id
}

// IDPtr returns the id for nullable persistence
func (o Origin) IDPtr() *uuid.UUID {
	if o.IsNone() {
		return nil
	}
	id := o.id
	return &id
}

// IsNone reports whether the entry has no origin
func (o Origin) IsNone() bool {
	return o.Kind() == OriginNone
}

func (o Origin) String() string {
	if o.IsNone() {
		return string(OriginNone)
	}
	return string(o.kind) + ":" + o.id.String()
}
