package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
)

// Metrics receives business observations after a unit of work commits.
// telemetry.LedgerMetrics satisfies it.
type Metrics interface {
	ReceiptRecorded(ctx context.Context, currency, method string, baseAmount decimal.Decimal)
	ReceiptVoided(ctx context.Context)
	Disbursement(ctx context.Context, stage string)
	PaymentStatusChanged(ctx context.Context, to string)
	SourceCanceled(ctx context.Context, kind string, canceledEntries int)
}

type noopMetrics struct{}

func (noopMetrics) ReceiptRecorded(context.Context, string, string, decimal.Decimal) {}
func (noopMetrics) ReceiptVoided(context.Context) {}
func (noopMetrics) Disbursement(context.Context, string) {}
func (noopMetrics) PaymentStatusChanged(context.Context, string) {}
func (noopMetrics) SourceCanceled(context.Context, string, int) {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

// observe reports committed events to the metrics sink
func observe(ctx context.Context, m Metrics, events []shared.DomainEvent) {
	for _, e := range events {
		switch ev := e.(type) {
		case *ledger.ReceiptRecordedEvent:
			m.ReceiptRecorded(ctx, string(ev.Currency), string(ev.Method), ev.BaseAmount)
		case *ledger.ReceiptVoidedEvent:
			m.ReceiptVoided(ctx)
		case *ledger.PaymentStatusChangedEvent:
			m.PaymentStatusChanged(ctx, string(ev.To))
		case *ledger.PayablePaymentSubmittedEvent:
			m.Disbursement(ctx, string(ledger.PayablePaymentPending))
		case *ledger.PayablePaymentApprovedEvent:
			m.Disbursement(ctx, string(ledger.PayablePaymentApproved))
		case *ledger.PayablePaymentPaidEvent:
			m.Disbursement(ctx, string(ledger.PayablePaymentPaid))
		}
	}
}

// recordEvents moves the pending events of every aggregate into the outbox
// of tx and returns them for post-commit observation
func recordEvents(ctx context.Context, tx ledger.Tx, roots ...shared.AggregateRoot) ([]shared.DomainEvent, error) {
	var events []shared.DomainEvent
	for _, root := range roots {
		events = append(events, root.GetDomainEvents()...)
	}
	if len(events) == 0 {
		return nil, nil
	}
	if err := tx.Outbox().Record(ctx, events...); err != nil {
		return nil, err
	}
	for _, root := range roots {
		root.ClearDomainEvents()
	}
	return events, nil
}
