package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
)

// entryTerms are the figures a source opens its payment and payable with
type entryTerms struct {
	origin       ledger.Origin
	description  string
	customerName string
	vendorName   string
	currency     ledger.Currency
	sale         decimal.Decimal
	cost         decimal.Decimal
	createdBy    uuid.UUID
}

// openEntries creates the payment (when sale > 0) and payable (when cost > 0)
// of an origin, freezing the rate of the source currency
func openEntries(ctx context.Context, tx ledger.Tx, terms entryTerms) (*ledger.Payment, *ledger.Payable, error) {
	if terms.sale.IsNegative() || terms.cost.IsNegative() {
		return nil, nil, shared.NewDomainError(shared.KindValidation, ledger.CodeInvalidAmount,
			"Sale and cost amounts cannot be negative")
	}
	if !terms.sale.IsPositive() && !terms.cost.IsPositive() {
		return nil, nil, nil
	}

	rates, err := loadRateTable(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	rate, err := ledger.FreezeRate(terms.currency, rates)
	if err != nil {
		return nil, nil, err
	}

	var payment *ledger.Payment
	if terms.sale.IsPositive() {
		payment, err = ledger.NewPayment(tx.TenantID(), terms.origin, terms.customerName, terms.sale, terms.currency, rate)
		if err != nil {
			return nil, nil, err
		}
		payment.Description = terms.description
		payment.SetCreatedBy(terms.createdBy)
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return nil, nil, err
		}
	}

	var payable *ledger.Payable
	if terms.cost.IsPositive() {
		payable, err = ledger.NewPayable(tx.TenantID(), terms.origin, terms.vendorName, terms.cost, terms.currency, rate)
		if err != nil {
			return nil, nil, err
		}
		payable.SetCreatedBy(terms.createdBy)
		if err := tx.Payables().Create(ctx, payable); err != nil {
			return nil, nil, err
		}
	}
	return payment, payable, nil
}

// OriginationService opens ledger entries for bookings and cargo shipments,
// which live in other modules and only reach the ledger through events or
// POST /originations
type OriginationService struct {
	store ledger.Store
	options
}

// NewOriginationService creates a new OriginationService
func NewOriginationService(store ledger.Store, opts ...Option) *OriginationService {
	return &OriginationService{store: store, options: buildOptions(opts)}
}

// Originate opens the payment and payable of a booking or shipment. It is
// idempotent per origin: when entries already exist they are returned with
// Created false.
func (s *OriginationService) Originate(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	req OriginateRequest,
) (*OriginationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "origination", "originate")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSourceKind, req.OriginKind,
		telemetry.SpanAttrSourceID, req.OriginID.String(),
	)

	origin, err := originationOrigin(req.OriginKind, req.OriginID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	currency, err := ledger.ParseCurrency(req.Currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := &OriginationResponse{}
	var events []shared.DomainEvent
	err = s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		payments, err := tx.Payments().FindByOriginForUpdate(ctx, origin)
		if err != nil {
			return err
		}
		payables, err := tx.Payables().FindByOriginForUpdate(ctx, origin)
		if err != nil {
			return err
		}
		if len(payments) > 0 || len(payables) > 0 {
			if len(payments) > 0 {
				resp.Payment = toPaymentResponse(payments[0])
			}
			if len(payables) > 0 {
				resp.Payable = toPayableResponse(payables[0])
			}
			return nil
		}

		description := req.Reference
		if description == "" {
			description = fmt.Sprintf("%s %s", origin.Kind(), origin.ID())
		}
		payment, payable, err := openEntries(ctx, tx, entryTerms{
			origin:       origin,
			description:  description,
			customerName: req.CustomerName,
			vendorName:   req.VendorName,
			currency:     currency,
			sale:         req.SaleAmount,
			cost:         req.CostAmount,
			createdBy:    userID,
		})
		if err != nil {
			return err
		}
		resp.Created = payment != nil || payable != nil
		var roots []shared.AggregateRoot
		if payment != nil {
			resp.Payment = toPaymentResponse(payment)
			roots = append(roots, payment)
		}
		if payable != nil {
			resp.Payable = toPayableResponse(payable)
			roots = append(roots, payable)
		}
		events, err = recordEvents(ctx, tx, roots...)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observe(ctx, s.metrics, events)
	if resp.Created {
		s.logger.Info("ledger entries originated",
			zap.String("tenant_id", tenantID.String()),
			zap.String("origin", origin.String()),
			zap.Bool("payment", resp.Payment != nil),
			zap.Bool("payable", resp.Payable != nil),
		)
	} else {
		s.logger.Debug("origination skipped, entries already exist",
			zap.String("tenant_id", tenantID.String()),
			zap.String("origin", origin.String()),
		)
	}
	return resp, nil
}

func originationOrigin(kind string, id uuid.UUID) (ledger.Origin, error) {
	switch ledger.OriginKind(kind) {
	case ledger.OriginBooking:
		return ledger.NewOrigin(ledger.OriginBooking, &id)
	case ledger.OriginShipment:
		return ledger.NewOrigin(ledger.OriginShipment, &id)
	}
	return ledger.Origin{}, shared.NewDomainError(shared.KindValidation, ledger.CodeInvalidOrigin,
		fmt.Sprintf("Only booking and shipment entries can be originated here, got %q", kind))
}

func termsRequest(kind ledger.OriginKind, id uuid.UUID, t ledger.OriginationTerms) OriginateRequest {
	return OriginateRequest{
		OriginKind:   string(kind),
		OriginID:     id,
		Reference:    t.Reference,
		CustomerName: t.CustomerName,
		VendorName:   t.VendorName,
		Currency:     string(t.Currency),
		SaleAmount:   t.SaleAmount,
		CostAmount:   t.CostAmount,
	}
}

// BookingConfirmedHandler opens ledger entries when a Haj/Umrah booking is confirmed
type BookingConfirmedHandler struct {
	svc    *OriginationService
	logger *zap.Logger
}

// NewBookingConfirmedHandler creates a new handler for booking confirmed events
func NewBookingConfirmedHandler(svc *OriginationService, logger *zap.Logger) *BookingConfirmedHandler {
	return &BookingConfirmedHandler{svc: svc, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *BookingConfirmedHandler) EventTypes() []string {
	return []string{ledger.EventTypeBookingConfirmed}
}

// Handle processes a BookingConfirmedEvent
func (h *BookingConfirmedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*ledger.BookingConfirmedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ledger.EventTypeBookingConfirmed),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ledger.EventTypeBookingConfirmed, event.EventType())
	}
	if _, err := h.svc.Originate(ctx, e.TenantID(), uuid.Nil, termsRequest(ledger.OriginBooking, e.BookingID, e.OriginationTerms)); err != nil {
		return fmt.Errorf("failed to originate booking %s: %w", e.BookingID, err)
	}
	return nil
}

// ShipmentCheckpointHandler opens ledger entries when a cargo shipment
// reaches its billing checkpoint
type ShipmentCheckpointHandler struct {
	svc    *OriginationService
	logger *zap.Logger
}

// NewShipmentCheckpointHandler creates a new handler for shipment checkpoint events
func NewShipmentCheckpointHandler(svc *OriginationService, logger *zap.Logger) *ShipmentCheckpointHandler {
	return &ShipmentCheckpointHandler{svc: svc, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ShipmentCheckpointHandler) EventTypes() []string {
	return []string{ledger.EventTypeShipmentCheckpointReached}
}

// Handle processes a ShipmentCheckpointReachedEvent
func (h *ShipmentCheckpointHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*ledger.ShipmentCheckpointReachedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ledger.EventTypeShipmentCheckpointReached),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ledger.EventTypeShipmentCheckpointReached, event.EventType())
	}
	h.logger.Info("shipment reached billing checkpoint",
		zap.String("shipment_id", e.ShipmentID.String()),
		zap.String("checkpoint", e.Checkpoint),
	)
	if _, err := h.svc.Originate(ctx, e.TenantID(), uuid.Nil, termsRequest(ledger.OriginShipment, e.ShipmentID, e.OriginationTerms)); err != nil {
		return fmt.Errorf("failed to originate shipment %s: %w", e.ShipmentID, err)
	}
	return nil
}

var (
	_ shared.EventHandler = (*BookingConfirmedHandler)(nil)
	_ shared.EventHandler = (*ShipmentCheckpointHandler)(nil)
)
