package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics records reconciliation activity: receipts, disbursements,
// status transitions, cancellation cascades and outbox delivery.
type LedgerMetrics struct {
	receiptsRecorded  *Counter
	receiptsVoided    *Counter
	receiptBaseAmount *Histogram
	disbursements     *Counter
	statusTransitions *Counter
	cascades          *Counter
	cascadedEntries   *Counter
	outboxDeliveries  *Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &LedgerMetrics{}
	var err error

	if m.receiptsRecorded, err = NewCounter(meter,
		"ledger_receipts_recorded_total", "Receipts recorded against customer payments", "{receipts}"); err != nil {
		return nil, err
	}
	if m.receiptsVoided, err = NewCounter(meter,
		"ledger_receipts_voided_total", "Receipts voided", "{receipts}"); err != nil {
		return nil, err
	}
	if m.receiptBaseAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger_receipt_base_amount",
		Description: "Receipt amounts normalized to the base currency",
		Unit:        "USD",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.disbursements, err = NewCounter(meter,
		"ledger_payable_disbursements_total", "Payable payment lifecycle transitions", "{disbursements}"); err != nil {
		return nil, err
	}
	if m.statusTransitions, err = NewCounter(meter,
		"ledger_payment_status_transitions_total", "Derived payment status changes", "{transitions}"); err != nil {
		return nil, err
	}
	if m.cascades, err = NewCounter(meter,
		"ledger_cancellation_cascades_total", "Ticket and visa cancellations", "{cascades}"); err != nil {
		return nil, err
	}
	if m.cascadedEntries, err = NewCounter(meter,
		"ledger_cancellation_cascaded_entries_total", "Payments and payables canceled by a source cancellation", "{entries}"); err != nil {
		return nil, err
	}
	if m.outboxDeliveries, err = NewCounter(meter,
		"ledger_outbox_deliveries_total", "Outbox delivery attempts by outcome", "{events}"); err != nil {
		return nil, err
	}
	return m, nil
}

// ReceiptRecorded counts a receipt and records its base amount
func (m *LedgerMetrics) ReceiptRecorded(ctx context.Context, currency, method string, baseAmount decimal.Decimal) {
	m.receiptsRecorded.Inc(ctx, AttrCurrency.String(currency), AttrPaymentMethod.String(method))
	m.receiptBaseAmount.Record(ctx, baseAmount.InexactFloat64(), AttrCurrency.String(currency))
}

// ReceiptVoided counts a voided receipt
func (m *LedgerMetrics) ReceiptVoided(ctx context.Context) {
	m.receiptsVoided.Inc(ctx)
}

// Disbursement counts a payable payment reaching stage (submitted, approved, paid)
func (m *LedgerMetrics) Disbursement(ctx context.Context, stage string) {
	m.disbursements.Inc(ctx, AttrStage.String(stage))
}

// PaymentStatusChanged counts a derived status transition
func (m *LedgerMetrics) PaymentStatusChanged(ctx context.Context, to string) {
	m.statusTransitions.Inc(ctx, AttrPaymentStatus.String(to))
}

// SourceCanceled counts a cascade and the entries it canceled
func (m *LedgerMetrics) SourceCanceled(ctx context.Context, kind string, canceledEntries int) {
	m.cascades.Inc(ctx, AttrSourceKind.String(kind))
	m.cascadedEntries.Add(ctx, int64(canceledEntries), AttrSourceKind.String(kind))
}

// OutboxDelivered counts a delivered outbox event
func (m *LedgerMetrics) OutboxDelivered(ctx context.Context, eventType string) {
	m.outboxDeliveries.Inc(ctx, AttrEventType.String(eventType), AttrOutcome.String("sent"))
}

// OutboxFailed counts a failed outbox delivery
func (m *LedgerMetrics) OutboxFailed(ctx context.Context, eventType string, dead bool) {
	outcome := "retry"
	if dead {
		outcome = "dead"
	}
	m.outboxDeliveries.Inc(ctx, AttrEventType.String(eventType), AttrOutcome.String(outcome))
}
