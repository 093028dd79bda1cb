package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelops/backoffice/internal/domain/ledger"
)

func TestEventSerializer_LedgerEventsRoundTrip(t *testing.T) {
	s := NewEventSerializer()
	RegisterLedgerEvents(s)

	tenantID := uuid.New()
	ticketID := uuid.New()
	canceledAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	original := ledger.NewSourceCanceledEvent(tenantID, ledger.TicketOrigin(ticketID), canceledAt)

	data, err := s.Serialize(original)
	require.NoError(t, err)

	restored, err := s.Deserialize(ledger.EventTypeSourceCanceled, data)
	require.NoError(t, err)

	got, ok := restored.(*ledger.SourceCanceledEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), got.EventID())
	assert.Equal(t, tenantID, got.TenantID())
	assert.Equal(t, ledger.OriginTicket, got.SourceKind)
	assert.Equal(t, ticketID, got.SourceID)
	assert.True(t, canceledAt.Equal(got.CanceledAt))
}

func TestEventSerializer_EmbeddedTermsSurvive(t *testing.T) {
	s := NewEventSerializer()
	RegisterLedgerEvents(s)

	terms := ledger.OriginationTerms{
		Reference:    "UMR-2026-041",
		CustomerName: "Al Noor Group",
		VendorName:   "Makkah Towers",
		Currency:     ledger.Currency("SAR"),
		SaleAmount:   decimal.RequireFromString("15000"),
		CostAmount:   decimal.RequireFromString("12000"),
	}
	original := ledger.NewBookingConfirmedEvent(uuid.New(), uuid.New(), "Ramadan", terms)

	data, err := s.Serialize(original)
	require.NoError(t, err)
	restored, err := s.Deserialize(ledger.EventTypeBookingConfirmed, data)
	require.NoError(t, err)

	got := restored.(*ledger.BookingConfirmedEvent)
	assert.Equal(t, "Ramadan", got.Campaign)
	assert.Equal(t, terms.Reference, got.Reference)
	assert.True(t, terms.SaleAmount.Equal(got.SaleAmount))
	assert.Equal(t, original.AggregateType(), got.AggregateType())
}

func TestEventSerializer_UnknownType(t *testing.T) {
	s := NewEventSerializer()

	_, err := s.Deserialize("Nope", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")
}

func TestRegisterLedgerEvents_CoversAllTypes(t *testing.T) {
	s := NewEventSerializer()
	RegisterLedgerEvents(s)

	for _, eventType := range []string{
		ledger.EventTypePaymentCreated,
		ledger.EventTypeReceiptRecorded,
		ledger.EventTypeReceiptVoided,
		ledger.EventTypePaymentStatusChanged,
		ledger.EventTypePayableCreated,
		ledger.EventTypePayablePaymentSubmitted,
		ledger.EventTypePayablePaymentApproved,
		ledger.EventTypePayablePaymentPaid,
		ledger.EventTypeSourceCanceled,
		ledger.EventTypeTicketAdjusted,
		ledger.EventTypeCurrencyRateChanged,
		ledger.EventTypeBookingConfirmed,
		ledger.EventTypeShipmentCheckpointReached,
	} {
		assert.True(t, s.IsRegistered(eventType), eventType)
	}
	assert.Len(t, s.RegisteredTypes(), 13)
}
