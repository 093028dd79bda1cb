package event

import (
	"github.com/travelops/backoffice/internal/domain/ledger"
)

// RegisterLedgerEvents registers every ledger event type with the serializer.
// The outbox processor cannot deliver an event whose type is missing here.
func RegisterLedgerEvents(serializer *EventSerializer) {
	// Receivables
	serializer.Register(ledger.EventTypePaymentCreated, &ledger.PaymentCreatedEvent{})
	serializer.Register(ledger.EventTypeReceiptRecorded, &ledger.ReceiptRecordedEvent{})
	serializer.Register(ledger.EventTypeReceiptVoided, &ledger.ReceiptVoidedEvent{})
	serializer.Register(ledger.EventTypePaymentStatusChanged, &ledger.PaymentStatusChangedEvent{})

	// Payables
	serializer.Register(ledger.EventTypePayableCreated, &ledger.PayableCreatedEvent{})
	serializer.Register(ledger.EventTypePayablePaymentSubmitted, &ledger.PayablePaymentSubmittedEvent{})
	serializer.Register(ledger.EventTypePayablePaymentApproved, &ledger.PayablePaymentApprovedEvent{})
	serializer.Register(ledger.EventTypePayablePaymentPaid, &ledger.PayablePaymentPaidEvent{})

	// Sources and rates
	serializer.Register(ledger.EventTypeSourceCanceled, &ledger.SourceCanceledEvent{})
	serializer.Register(ledger.EventTypeTicketAdjusted, &ledger.TicketAdjustedEvent{})
	serializer.Register(ledger.EventTypeCurrencyRateChanged, &ledger.CurrencyRateChangedEvent{})

	// Upstream originations
	serializer.Register(ledger.EventTypeBookingConfirmed, &ledger.BookingConfirmedEvent{})
	serializer.Register(ledger.EventTypeShipmentCheckpointReached, &ledger.ShipmentCheckpointReachedEvent{})
}
