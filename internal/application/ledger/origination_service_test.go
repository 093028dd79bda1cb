package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/travelops/backoffice/internal/domain/ledger"
)

func TestOriginationService_Originate_IsIdempotent(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	tenantID := uuid.New()
	req := OriginateRequest{
		OriginKind:   "booking",
		OriginID:     uuid.New(),
		Reference:    "UMRAH-2026-17",
		CustomerName: "Al Noor Family",
		VendorName:   "Makkah Towers",
		Currency:     "USD",
		SaleAmount:   dec("3200"),
		CostAmount:   dec("2500"),
	}

	first, err := s.origination.Originate(ctx, tenantID, uuid.New(), req)
	require.NoError(t, err)
	assert.True(t, first.Created)
	require.NotNil(t, first.Payment)
	require.NotNil(t, first.Payable)
	assert.Equal(t, "UMRAH-2026-17", first.Payment.Description)

	second, err := s.origination.Originate(ctx, tenantID, uuid.New(), req)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Payment.ID, second.Payment.ID)
	assert.Equal(t, first.Payable.ID, second.Payable.ID)

	page, err := s.query.ListPayments(ctx, tenantID, PaymentListFilter{OriginKind: "booking"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestOriginationService_Originate_Validation(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  OriginateRequest
		code string
	}{
		{
			name: "ticket origin is recorded through sales",
			req:  OriginateRequest{OriginKind: "ticket", OriginID: uuid.New(), Currency: "USD", SaleAmount: dec("1")},
			code: ledger.CodeInvalidOrigin,
		},
		{
			name: "negative sale",
			req:  OriginateRequest{OriginKind: "shipment", OriginID: uuid.New(), Currency: "USD", SaleAmount: dec("-1")},
			code: ledger.CodeInvalidAmount,
		},
		{
			name: "unknown currency",
			req:  OriginateRequest{OriginKind: "shipment", OriginID: uuid.New(), Currency: "usd1", SaleAmount: dec("1")},
			code: ledger.CodeInvalidCurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.origination.Originate(ctx, uuid.New(), uuid.New(), tt.req)
			requireCode(t, err, tt.code)
		})
	}
}

func TestOriginationService_Originate_ZeroAmountsCreateNothing(t *testing.T) {
	s := setupServices(t)
	resp, err := s.origination.Originate(context.Background(), uuid.New(), uuid.New(), OriginateRequest{
		OriginKind: "shipment", OriginID: uuid.New(), Currency: "USD",
	})
	require.NoError(t, err)
	assert.False(t, resp.Created)
	assert.Nil(t, resp.Payment)
	assert.Nil(t, resp.Payable)
}

func TestBookingConfirmedHandler_Handle(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	tenantID, bookingID := uuid.New(), uuid.New()
	handler := NewBookingConfirmedHandler(s.origination, zap.NewNop())
	assert.Equal(t, []string{ledger.EventTypeBookingConfirmed}, handler.EventTypes())

	event := ledger.NewBookingConfirmedEvent(tenantID, bookingID, "Ramadan 2026", ledger.OriginationTerms{
		Reference:    "HAJ-88",
		CustomerName: "Pilgrim Group",
		VendorName:   "Hotel Partner",
		Currency:     "USD",
		SaleAmount:   dec("5000"),
		CostAmount:   dec("4100"),
	})
	require.NoError(t, handler.Handle(ctx, event))
	require.NoError(t, handler.Handle(ctx, event), "redelivery must not duplicate entries")

	page, err := s.query.ListPayments(ctx, tenantID, PaymentListFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, bookingID, *page.Items[0].OriginID)

	payables, err := s.query.ListPayables(ctx, tenantID, PayableListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, payables.Total)
}

func TestShipmentCheckpointHandler_Handle(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	tenantID, shipmentID := uuid.New(), uuid.New()
	handler := NewShipmentCheckpointHandler(s.origination, zap.NewNop())

	event := ledger.NewShipmentCheckpointReachedEvent(tenantID, shipmentID, "delivered", ledger.OriginationTerms{
		CustomerName: "Gulf Imports",
		Currency:     "USD",
		SaleAmount:   dec("750"),
	})
	require.NoError(t, handler.Handle(ctx, event))

	page, err := s.query.ListPayments(ctx, tenantID, PaymentListFilter{OriginKind: "shipment"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.True(t, dec("750").Equal(page.Items[0].Amount))

	err = handler.Handle(ctx, ledger.NewBookingConfirmedEvent(tenantID, uuid.New(), "", ledger.OriginationTerms{}))
	require.Error(t, err)
}
