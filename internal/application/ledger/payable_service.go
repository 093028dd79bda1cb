package ledger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
)

// PayableService drives vendor disbursements through pending, approved and paid
type PayableService struct {
	store ledger.Store
	options
}

// NewPayableService creates a new PayableService
func NewPayableService(store ledger.Store, opts ...Option) *PayableService {
	return &PayableService{store: store, options: buildOptions(opts)}
}

// SubmitPayablePayment requests a disbursement. The payable row stays locked
// while the available balance is checked so concurrent requests cannot
// reserve more than the remaining balance.
func (s *PayableService) SubmitPayablePayment(
	ctx context.Context,
	tenantID, userID, payableID uuid.UUID,
	req SubmitPayablePaymentRequest,
) (*PayablePaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payable", "submit_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPayableID, payableID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	var (
		result PayablePaymentResponse
		events []shared.DomainEvent
	)
	err := s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		payable, err := tx.Payables().FindByIDForUpdate(ctx, payableID)
		if err != nil {
			return err
		}
		pp, err := payable.SubmitPayment(ledger.PayablePaymentInput{
			Amount:      req.Amount,
			Method:      ledger.PaymentMethod(req.Method),
			Reference:   req.Reference,
			PaymentDate: req.PaymentDate,
			RequestedBy: userID,
		})
		if err != nil {
			return err
		}
		result = toPayablePaymentResponse(pp)
		if err := tx.Payables().Save(ctx, payable); err != nil {
			return err
		}
		events, err = recordEvents(ctx, tx, payable)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observe(ctx, s.metrics, events)
	telemetry.SetAttributes(span, telemetry.SpanAttrDisbursement, result.ID.String())
	s.logger.Info("payable payment submitted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payable_id", payableID.String()),
		zap.String("payable_payment_id", result.ID.String()),
		zap.String("amount", req.Amount.String()),
	)
	return &result, nil
}

// ApprovePayablePayment moves a pending disbursement to approved
func (s *PayableService) ApprovePayablePayment(
	ctx context.Context,
	tenantID, approverID, payablePaymentID uuid.UUID,
) (*PayablePaymentResponse, error) {
	return s.transition(ctx, "approve_payment", tenantID, payablePaymentID,
		func(p *ledger.Payable) (*ledger.PayablePayment, error) {
			return p.ApprovePayment(payablePaymentID, approverID)
		})
}

// MarkPayablePaymentPaid settles an approved disbursement and decrements the
// payable balance in the same transaction
func (s *PayableService) MarkPayablePaymentPaid(
	ctx context.Context,
	tenantID, payerID, payablePaymentID uuid.UUID,
) (*PayablePaymentResponse, error) {
	return s.transition(ctx, "mark_paid", tenantID, payablePaymentID,
		func(p *ledger.Payable) (*ledger.PayablePayment, error) {
			return p.MarkPaymentPaid(payablePaymentID, payerID)
		})
}

func (s *PayableService) transition(
	ctx context.Context,
	method string,
	tenantID, payablePaymentID uuid.UUID,
	apply func(p *ledger.Payable) (*ledger.PayablePayment, error),
) (*PayablePaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payable", method)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrDisbursement, payablePaymentID.String(),
	)

	var (
		result  PayablePaymentResponse
		balance string
		events  []shared.DomainEvent
	)
	err := s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		payable, err := tx.Payables().FindByPaymentIDForUpdate(ctx, payablePaymentID)
		if err != nil {
			return err
		}
		pp, err := apply(payable)
		if err != nil {
			return err
		}
		result = toPayablePaymentResponse(pp)
		balance = ledger.FormatMoney(payable.Balance, payable.Currency)
		if err := tx.Payables().Save(ctx, payable); err != nil {
			return err
		}
		events, err = recordEvents(ctx, tx, payable)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observe(ctx, s.metrics, events)
	telemetry.SetAttributes(span, telemetry.SpanAttrStatus, result.Status)
	s.logger.Info("payable payment transitioned",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payable_payment_id", payablePaymentID.String()),
		zap.String("status", result.Status),
		zap.String("payable_balance", balance),
	)
	return &result, nil
}
