package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
)

// RateService is the versioned rate lookup of a tenant. Conversions never
// read rates ambiently: callers take a Snapshot and pass it along.
type RateService struct {
	store ledger.Store
	options
}

// NewRateService creates a new RateService
func NewRateService(store ledger.Store, opts ...Option) *RateService {
	return &RateService{store: store, options: buildOptions(opts)}
}

func loadRateTable(ctx context.Context, tx ledger.Tx) (ledger.RateTable, error) {
	rows, err := tx.Rates().FindAll(ctx)
	if err != nil {
		return ledger.RateTable{}, err
	}
	return ledger.BuildRateTable(rows), nil
}

// Snapshot returns the current rate table of the tenant
func (s *RateService) Snapshot(ctx context.Context, tenantID uuid.UUID) (ledger.RateTable, error) {
	var table ledger.RateTable
	err := s.store.View(ctx, tenantID, func(tx ledger.Tx) error {
		var err error
		table, err = loadRateTable(ctx, tx)
		return err
	})
	return table, err
}

// ListRates returns every configured rate ordered by currency
func (s *RateService) ListRates(ctx context.Context, tenantID uuid.UUID) ([]RateResponse, error) {
	var out []RateResponse
	err := s.store.View(ctx, tenantID, func(tx ledger.Tx) error {
		rows, err := tx.Rates().FindAll(ctx)
		if err != nil {
			return err
		}
		out = make([]RateResponse, len(rows))
		for i := range rows {
			out[i] = toRateResponse(&rows[i])
		}
		return nil
	})
	return out, err
}

// SetRate creates or changes the rate of one currency and bumps the table revision.
// Entries recorded earlier keep the rate frozen on them.
func (s *RateService) SetRate(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	code string,
	req SetRateRequest,
) (*RateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "rate", "set_rate")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrCurrency, code,
		telemetry.SpanAttrAmount, req.RateToUsd.String(),
	)

	currency, err := ledger.ParseCurrency(code)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		rate     *ledger.CurrencyRate
		previous decimal.Decimal
	)
	err = s.store.Tx(ctx, tenantID, func(tx ledger.Tx) error {
		var err error
		rate, err = tx.Rates().FindByCurrencyForUpdate(ctx, currency)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			rate, err = ledger.NewCurrencyRate(tenantID, currency, req.RateToUsd)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			previous = rate.RateToUsd
		}

		revision, err := tx.Rates().NextRevision(ctx)
		if err != nil {
			return err
		}
		if err := rate.Change(req.RateToUsd, revision, userID); err != nil {
			return err
		}
		if err := tx.Rates().Save(ctx, rate); err != nil {
			return err
		}
		return tx.Outbox().Record(ctx, ledger.NewCurrencyRateChangedEvent(rate, previous))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("currency rate changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("currency", string(currency)),
		zap.String("previous", previous.String()),
		zap.String("rate_to_usd", rate.RateToUsd.String()),
		zap.Int64("revision", rate.Revision),
	)
	resp := toRateResponse(rate)
	return &resp, nil
}
