package ledger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
)

// ReceiptService records collections against customer payments
type ReceiptService struct {
	store ledger.Store
	options
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(store ledger.Store, opts ...Option) *ReceiptService {
	return &ReceiptService{store: store, options: buildOptions(opts)}
}

// RecordReceipt appends a receipt to the payment and re-derives its status.
// The receipt rate is frozen from the tenant rate table read in the same transaction.
func (s *ReceiptService) RecordReceipt(
	ctx context.Context,
	tenantID, userID, paymentID uuid.UUID,
	req RecordReceiptRequest,
) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "record_receipt")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
		telemetry.SpanAttrCurrency, req.Currency,
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	currency, err := ledger.ParseCurrency(req.Currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		payment *ledger.Payment
		events  []shared.DomainEvent
	)
	err = s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		rates, err := loadRateTable(ctx, tx)
		if err != nil {
			return err
		}

		payment, err = tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		rate, err := payment.ReceiptRate(currency, rates)
		if err != nil {
			return err
		}
		if _, err := payment.RecordReceipt(ledger.ReceiptInput{
			Amount:          req.Amount,
			Currency:        currency,
			Method:          ledger.PaymentMethod(req.Method),
			CollectionPoint: ledger.CollectionPoint(req.CollectionPoint),
			Reference:       req.Reference,
			ReceivedBy:      userID,
			ReceivedAt:      req.ReceivedAt,
		}, rate); err != nil {
			return err
		}
		if err := tx.Payments().Save(ctx, payment); err != nil {
			return err
		}
		events, err = recordEvents(ctx, tx, payment)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observe(ctx, s.metrics, events)
	telemetry.SetAttributes(span, telemetry.SpanAttrStatus, string(payment.Status))
	s.logger.Info("receipt recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("currency", string(currency)),
		zap.String("status", string(payment.Status)),
	)
	return toPaymentResponse(payment), nil
}

// VoidReceipt flags a receipt as voided. The row is kept and the owning
// payment status is re-derived without it.
func (s *ReceiptService) VoidReceipt(
	ctx context.Context,
	tenantID, userID, receiptID uuid.UUID,
	req VoidReceiptRequest,
) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "void_receipt")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrReceiptID, receiptID.String(),
	)

	var (
		payment *ledger.Payment
		events  []shared.DomainEvent
	)
	err := s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		var err error
		payment, err = tx.Payments().FindByReceiptIDForUpdate(ctx, receiptID)
		if err != nil {
			return err
		}
		if err := payment.VoidReceipt(receiptID, req.Reason, userID); err != nil {
			return err
		}
		if err := tx.Payments().Save(ctx, payment); err != nil {
			return err
		}
		events, err = recordEvents(ctx, tx, payment)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observe(ctx, s.metrics, events)
	s.logger.Info("receipt voided",
		zap.String("tenant_id", tenantID.String()),
		zap.String("receipt_id", receiptID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("status", string(payment.Status)),
	)
	return toPaymentResponse(payment), nil
}

// SetCredit puts a payment on credit until the expected date
func (s *ReceiptService) SetCredit(
	ctx context.Context,
	tenantID, paymentID uuid.UUID,
	req SetCreditRequest,
) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "set_credit")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPaymentID, paymentID.String(),
	)

	var (
		payment *ledger.Payment
		events  []shared.DomainEvent
	)
	err := s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		var err error
		payment, err = tx.Payments().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := payment.SetCredit(req.ExpectedDate); err != nil {
			return err
		}
		if err := tx.Payments().Save(ctx, payment); err != nil {
			return err
		}
		events, err = recordEvents(ctx, tx, payment)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	observe(ctx, s.metrics, events)
	return toPaymentResponse(payment), nil
}
