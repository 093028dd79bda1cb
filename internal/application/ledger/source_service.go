package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
)

// CodeDuplicateTicketNumber is returned when a ticket number is reused within a tenant
const CodeDuplicateTicketNumber = "DUPLICATE_TICKET_NUMBER"

// SourceService records ticket and visa sales and keeps their payments and
// payables consistent through cancellation and adjustment
type SourceService struct {
	store ledger.Store
	options
}

// NewSourceService creates a new SourceService
func NewSourceService(store ledger.Store, opts ...Option) *SourceService {
	return &SourceService{store: store, options: buildOptions(opts)}
}

// RecordTicketSale creates a ticket with its payment (net sales) and payable (net cost)
func (s *SourceService) RecordTicketSale(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	req RecordTicketSaleRequest,
) (*OriginationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "source", "record_ticket_sale")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSourceKind, string(ledger.OriginTicket),
		telemetry.SpanAttrCurrency, req.Currency,
	)

	currency, err := ledger.ParseCurrency(req.Currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	ticket, err := ledger.NewTicket(tenantID, ledger.TicketInput{
		TicketNumber:  req.TicketNumber,
		PassengerName: req.PassengerName,
		Airline:       req.Airline,
		CustomerName:  req.CustomerName,
		VendorName:    req.VendorName,
		Currency:      currency,
		NetSales:      req.NetSales,
		NetCost:       req.NetCost,
		IssuedAt:      req.IssuedAt,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	ticket.SetCreatedBy(userID)

	resp := &OriginationResponse{Created: true, Ticket: toTicketResponse(ticket)}
	var events []shared.DomainEvent
	err = s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		exists, err := tx.Tickets().ExistsByNumber(ctx, ticket.TicketNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.KindStateConflict, CodeDuplicateTicketNumber,
				fmt.Sprintf("Ticket number %s is already recorded", ticket.TicketNumber))
		}
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		payment, payable, err := openEntries(ctx, tx, entryTerms{
			origin:       ticket.Origin(),
			description:  "Ticket " + ticket.TicketNumber,
			customerName: ticket.CustomerName,
			vendorName:   ticket.VendorName,
			currency:     currency,
			sale:         ticket.NetSales,
			cost:         ticket.NetCost,
			createdBy:    userID,
		})
		if err != nil {
			return err
		}
		events, err = recordOrigination(ctx, tx, resp, ticket, payment, payable)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observe(ctx, s.metrics, events)
	telemetry.SetAttributes(span, telemetry.SpanAttrSourceID, ticket.ID.String())
	s.logger.Info("ticket sale recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("net_sales", ticket.NetSales.String()),
		zap.String("net_cost", ticket.NetCost.String()),
	)
	return resp, nil
}

// RecordVisaIssue creates a visa with its payment (sale price) and payable (cost)
func (s *SourceService) RecordVisaIssue(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	req RecordVisaIssueRequest,
) (*OriginationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "source", "record_visa_issue")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSourceKind, string(ledger.OriginVisa),
		telemetry.SpanAttrCurrency, req.Currency,
	)

	currency, err := ledger.ParseCurrency(req.Currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	visa, err := ledger.NewVisa(tenantID, ledger.VisaInput{
		ApplicationNumber: req.ApplicationNumber,
		ApplicantName:     req.ApplicantName,
		Country:           req.Country,
		VisaType:          req.VisaType,
		CustomerName:      req.CustomerName,
		VendorName:        req.VendorName,
		Currency:          currency,
		SalePrice:         req.SalePrice,
		Cost:              req.Cost,
		IssuedAt:          req.IssuedAt,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	visa.SetCreatedBy(userID)

	resp := &OriginationResponse{Created: true, Visa: toVisaResponse(visa)}
	var events []shared.DomainEvent
	err = s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		if err := tx.Visas().Create(ctx, visa); err != nil {
			return err
		}
		payment, payable, err := openEntries(ctx, tx, entryTerms{
			origin:       visa.Origin(),
			description:  "Visa " + visa.ApplicationNumber,
			customerName: visa.CustomerName,
			vendorName:   visa.VendorName,
			currency:     currency,
			sale:         visa.SalePrice,
			cost:         visa.Cost,
			createdBy:    userID,
		})
		if err != nil {
			return err
		}
		events, err = recordOrigination(ctx, tx, resp, visa, payment, payable)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observe(ctx, s.metrics, events)
	telemetry.SetAttributes(span, telemetry.SpanAttrSourceID, visa.ID.String())
	s.logger.Info("visa issue recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("visa_id", visa.ID.String()),
		zap.String("application_number", visa.ApplicationNumber),
	)
	return resp, nil
}

func recordOrigination(
	ctx context.Context,
	tx ledger.Tx,
	resp *OriginationResponse,
	source shared.AggregateRoot,
	payment *ledger.Payment,
	payable *ledger.Payable,
) ([]shared.DomainEvent, error) {
	roots := []shared.AggregateRoot{source}
	if payment != nil {
		resp.Payment = toPaymentResponse(payment)
		roots = append(roots, payment)
	}
	if payable != nil {
		resp.Payable = toPayableResponse(payable)
		roots = append(roots, payable)
	}
	return recordEvents(ctx, tx, roots...)
}

// lockedSource loads a ticket or visa under a row lock together with a
// function persisting it
func lockedSource(ctx context.Context, tx ledger.Tx, kind ledger.OriginKind, id uuid.UUID) (ledger.Source, func() error, error) {
	switch kind {
	case ledger.OriginTicket:
		t, err := tx.Tickets().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return t, func() error { return tx.Tickets().Save(ctx, t) }, nil
	case ledger.OriginVisa:
		v, err := tx.Visas().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return v, func() error { return tx.Visas().Save(ctx, v) }, nil
	}
	return nil, nil, shared.NewDomainError(shared.KindValidation, ledger.CodeInvalidOrigin,
		fmt.Sprintf("Only tickets and visas can be canceled, got %q", kind))
}

// CancelSource cancels a ticket or visa and every non-canceled payment and
// payable raised for it in one transaction. Receipts and disbursements are
// kept as history.
func (s *SourceService) CancelSource(
	ctx context.Context,
	tenantID uuid.UUID,
	kind ledger.OriginKind,
	sourceID uuid.UUID,
) (*CancelSourceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "source", "cancel_source")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSourceKind, string(kind),
		telemetry.SpanAttrSourceID, sourceID.String(),
	)

	resp := &CancelSourceResponse{SourceKind: string(kind), SourceID: sourceID}
	var err error
	telemetry.WithProfilingLabels(ctx, map[string]string{"operation": "cancel_source", "source_kind": string(kind)}, func(ctx context.Context) {
		err = s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
			return s.cascade(ctx, tx, kind, sourceID, resp)
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.SourceCanceled(ctx, string(kind), resp.PaymentsCanceled+resp.PayablesCanceled)
	s.logger.Info("source canceled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("source_kind", string(kind)),
		zap.String("source_id", sourceID.String()),
		zap.Int("payments_canceled", resp.PaymentsCanceled),
		zap.Int("payables_canceled", resp.PayablesCanceled),
	)
	return resp, nil
}

func (s *SourceService) cascade(ctx context.Context, tx ledger.Tx, kind ledger.OriginKind, id uuid.UUID, resp *CancelSourceResponse) error {
	source, save, err := lockedSource(ctx, tx, kind, id)
	if err != nil {
		return err
	}
	at := time.Now()
	if err := source.Cancel(at); err != nil {
		return err
	}
	if err := save(); err != nil {
		return err
	}
	resp.CanceledAt = at
	resp.PaymentsCanceled, resp.PayablesCanceled = 0, 0

	payments, err := tx.Payments().FindByOriginForUpdate(ctx, source.Origin())
	if err != nil {
		return err
	}
	for _, p := range payments {
		if p.IsCanceled() {
			continue
		}
		if err := p.Cancel(at); err != nil {
			return err
		}
		if err := tx.Payments().Save(ctx, p); err != nil {
			return err
		}
		resp.PaymentsCanceled++
	}

	payables, err := tx.Payables().FindByOriginForUpdate(ctx, source.Origin())
	if err != nil {
		return err
	}
	for _, p := range payables {
		if p.IsCanceled() {
			continue
		}
		if err := p.Cancel(at); err != nil {
			return err
		}
		if err := tx.Payables().Save(ctx, p); err != nil {
			return err
		}
		resp.PayablesCanceled++
	}

	_, err = recordEvents(ctx, tx, source)
	return err
}

// ApplyTicketAdjustment revises ticket net sales and net cost, re-prices the
// ticket payment and payable and appends the audit record, all in one transaction
func (s *SourceService) ApplyTicketAdjustment(
	ctx context.Context,
	tenantID, userID, ticketID uuid.UUID,
	req TicketAdjustmentRequest,
) (*TicketAdjustmentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "source", "apply_ticket_adjustment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSourceID, ticketID.String(),
		telemetry.SpanAttrAmount, req.NewNetSales.String(),
	)

	resp := &TicketAdjustmentResponse{}
	var events []shared.DomainEvent
	err := s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		ticket, err := tx.Tickets().FindByIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		adj, err := ticket.Adjust(req.NewNetSales, req.NewNetCost, req.Reason, userID)
		if err != nil {
			return err
		}
		if err := tx.Tickets().Save(ctx, ticket); err != nil {
			return err
		}
		if err := tx.Adjustments().Append(ctx, adj); err != nil {
			return err
		}
		roots := []shared.AggregateRoot{ticket}

		payment, err := s.revisePayment(ctx, tx, ticket)
		if err != nil {
			return err
		}
		payable, err := s.revisePayable(ctx, tx, ticket)
		if err != nil {
			return err
		}

		// entries the ticket never had are opened once its figures become positive
		terms := entryTerms{
			origin:       ticket.Origin(),
			description:  "Ticket " + ticket.TicketNumber,
			customerName: ticket.CustomerName,
			vendorName:   ticket.VendorName,
			currency:     ticket.Currency,
			createdBy:    userID,
		}
		if payment == nil {
			terms.sale = ticket.NetSales
		}
		if payable == nil {
			terms.cost = ticket.NetCost
		}
		openedPayment, openedPayable, err := openEntries(ctx, tx, terms)
		if err != nil {
			return err
		}
		if openedPayment != nil {
			payment = openedPayment
		}
		if openedPayable != nil {
			payable = openedPayable
		}

		if payment != nil {
			roots = append(roots, payment)
			resp.Payment = toPaymentResponse(payment)
		}
		if payable != nil {
			roots = append(roots, payable)
			resp.Payable = toPayableResponse(payable)
		}

		resp.Adjustment = toAdjustmentResponse(adj)
		resp.Ticket = toTicketResponse(ticket)
		events, err = recordEvents(ctx, tx, roots...)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observe(ctx, s.metrics, events)
	s.logger.Info("ticket adjusted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("ticket_id", ticketID.String()),
		zap.String("new_net_sales", req.NewNetSales.String()),
		zap.String("new_net_cost", req.NewNetCost.String()),
	)
	return resp, nil
}

// revisePayment rewrites the first non-canceled payment of the ticket to
// the new net sales
func (s *SourceService) revisePayment(ctx context.Context, tx ledger.Tx, ticket *ledger.Ticket) (*ledger.Payment, error) {
	payments, err := tx.Payments().FindByOriginForUpdate(ctx, ticket.Origin())
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if p.IsCanceled() {
			continue
		}
		if err := p.Revise(ticket.NetSales); err != nil {
			return nil, err
		}
		if err := tx.Payments().Save(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, nil
}

// revisePayable shifts the ticket payable to the new net cost, keeping what
// was already paid
func (s *SourceService) revisePayable(ctx context.Context, tx ledger.Tx, ticket *ledger.Ticket) (*ledger.Payable, error) {
	payables, err := tx.Payables().FindByOriginForUpdate(ctx, ticket.Origin())
	if err != nil {
		return nil, err
	}
	for _, p := range payables {
		if p.IsCanceled() {
			continue
		}
		if err := p.Revise(ticket.NetCost); err != nil {
			return nil, err
		}
		if err := tx.Payables().Save(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, nil
}

// ListAdjustments returns the audit trail of a ticket, oldest first
func (s *SourceService) ListAdjustments(ctx context.Context, tenantID, ticketID uuid.UUID) ([]AdjustmentResponse, error) {
	var out []AdjustmentResponse
	err := s.store.View(ctx, tenantID, func(tx ledger.Tx) error {
		if _, err := tx.Tickets().FindByID(ctx, ticketID); err != nil {
			return err
		}
		adjustments, err := tx.Adjustments().ListByTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		out = make([]AdjustmentResponse, len(adjustments))
		for i := range adjustments {
			out[i] = toAdjustmentResponse(&adjustments[i])
		}
		return nil
	})
	return out, err
}
