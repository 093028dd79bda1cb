package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
)

// QueryService serves read-only views of payments and payables
type QueryService struct {
	store ledger.Store
	options
}

// NewQueryService creates a new QueryService
func NewQueryService(store ledger.Store, opts ...Option) *QueryService {
	return &QueryService{store: store, options: buildOptions(opts)}
}

// GetPayment returns a payment with its receipts
func (s *QueryService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	var resp *PaymentResponse
	err := s.store.View(ctx, tenantID, func(tx ledger.Tx) error {
		payment, err := tx.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		resp = toPaymentResponse(payment)
		return nil
	})
	return resp, err
}

// ListPayments lists payments with filtering and pagination
func (s *QueryService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) (shared.Paginated[PaymentResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "list_payments")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String())

	query := ledger.PaymentFilter{
		Filter:          listFilter(filter.Search, filter.OrderBy, filter.OrderDir, filter.Page, filter.PageSize),
		Status:          ledger.PaymentStatus(filter.Status),
		OriginKind:      ledger.OriginKind(filter.OriginKind),
		IncludeCanceled: filter.IncludeCanceled,
	}

	var result shared.Paginated[PaymentResponse]
	err := s.store.View(ctx, tenantID, func(tx ledger.Tx) error {
		payments, total, err := tx.Payments().FindAll(ctx, query)
		if err != nil {
			return err
		}
		items := make([]PaymentResponse, len(payments))
		for i, p := range payments {
			items[i] = *toPaymentResponse(p)
		}
		result = shared.NewPaginated(items, total, query.Page, query.Limit())
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return result, err
}

// GetPayable returns a payable with its disbursements
func (s *QueryService) GetPayable(ctx context.Context, tenantID, payableID uuid.UUID) (*PayableResponse, error) {
	var resp *PayableResponse
	err := s.store.View(ctx, tenantID, func(tx ledger.Tx) error {
		payable, err := tx.Payables().FindByID(ctx, payableID)
		if err != nil {
			return err
		}
		resp = toPayableResponse(payable)
		return nil
	})
	return resp, err
}

// ListPayables lists payables with filtering and pagination
func (s *QueryService) ListPayables(ctx context.Context, tenantID uuid.UUID, filter PayableListFilter) (shared.Paginated[PayableResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "list_payables")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String())

	query := ledger.PayableFilter{
		Filter:          listFilter(filter.Search, filter.OrderBy, filter.OrderDir, filter.Page, filter.PageSize),
		OriginKind:      ledger.OriginKind(filter.OriginKind),
		OnlyOutstanding: filter.OnlyOutstanding,
		IncludeCanceled: filter.IncludeCanceled,
	}

	var result shared.Paginated[PayableResponse]
	err := s.store.View(ctx, tenantID, func(tx ledger.Tx) error {
		payables, total, err := tx.Payables().FindAll(ctx, query)
		if err != nil {
			return err
		}
		items := make([]PayableResponse, len(payables))
		for i, p := range payables {
			items[i] = *toPayableResponse(p)
		}
		result = shared.NewPaginated(items, total, query.Page, query.Limit())
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return result, err
}

func listFilter(search, orderBy, orderDir string, page, pageSize int) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	if orderBy != "" {
		f.OrderBy = orderBy
	}
	if orderDir != "" {
		f.OrderDir = orderDir
	}
	if search != "" {
		f.Filters["search"] = search
	}
	return f
}

// Summary aggregates open payments and payables into base-currency totals.
// Canceled entries and voided receipts are excluded and every amount is
// converted with the rate frozen on its own record.
func (s *QueryService) Summary(ctx context.Context, tenantID uuid.UUID) (*SummaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "query", "summary")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String())

	resp := &SummaryResponse{
		BaseCurrency:       string(ledger.BaseCurrency),
		Receivable:         decimal.Zero,
		Received:           decimal.Zero,
		Outstanding:        decimal.Zero,
		Refundable:         decimal.Zero,
		PayableOutstanding: decimal.Zero,
		PaymentsByStatus:   make(map[string]int),
		PayablesByStatus:   make(map[string]int),
	}
	err := s.store.View(ctx, tenantID, func(tx ledger.Tx) error {
		payments, err := tx.Payments().FindOpen(ctx)
		if err != nil {
			return err
		}
		for _, p := range payments {
			resp.Receivable = resp.Receivable.Add(p.ExpectedTotal())
			resp.Received = resp.Received.Add(p.ReceivedTotal())
			balance := p.Balance()
			if balance.IsPositive() {
				resp.Outstanding = resp.Outstanding.Add(balance)
			} else if balance.IsNegative() {
				resp.Refundable = resp.Refundable.Add(balance.Neg())
			}
			if !p.Status.IsSettled() {
				resp.OpenPayments++
			}
			resp.PaymentsByStatus[p.Status.String()]++
		}

		payables, err := tx.Payables().FindOpen(ctx)
		if err != nil {
			return err
		}
		for _, p := range payables {
			resp.PayableOutstanding = resp.PayableOutstanding.Add(p.BaseBalance())
			status := p.Status()
			if status != ledger.PayableStatusSettled {
				resp.OpenPayables++
			}
			resp.PayablesByStatus[string(status)]++
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp.GeneratedAt = time.Now()
	return resp, nil
}
