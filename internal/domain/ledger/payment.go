package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/shared"
)

// Receipt is an append-only collection entry against a Payment. Its
// RateToBase is frozen at creation.
type Receipt struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	PaymentID       uuid.UUID
	Amount          decimal.Decimal
	Currency        Currency
	RateToBase      decimal.Decimal
	Method          PaymentMethod
	CollectionPoint CollectionPoint
	Reference       string
	ReceivedBy      uuid.UUID
	ReceivedAt      time.Time
	VoidedAt        *time.Time
	VoidedBy        *uuid.UUID
	VoidReason      string
	CreatedAt       time.Time
}

// BaseAmount returns the receipt amount in base currency at its frozen rate,
// rounded for reporting
func (r *Receipt) BaseAmount() decimal.Decimal {
	return ToBaseFrozen(r.Amount, r.RateToBase)
}

// IsVoided reports whether the receipt was voided
func (r *Receipt) IsVoided() bool {
	return r.VoidedAt != nil
}

// ReceiptInput carries the caller-supplied fields of a new receipt
type ReceiptInput struct {
	Amount          decimal.Decimal
	Currency        Currency
	Method          PaymentMethod
	CollectionPoint CollectionPoint
	Reference       string
	ReceivedBy      uuid.UUID
	ReceivedAt      *time.Time
}

// Payment is money a customer owes. Its status is always derived from the
// receipt list and never written directly.
type Payment struct {
	shared.TenantAggregateRoot
	Origin       Origin
	CustomerName string
	Description  string
	Amount       decimal.Decimal
	Currency     Currency
	RateToBase   decimal.Decimal
	Status       PaymentStatus
	ExpectedDate *time.Time
	CanceledAt   *time.Time
	Receipts     []Receipt
}

// NewPayment creates a pending payment. rateToBase must come from FreezeRate
// for the payment currency.
func NewPayment(
	tenantID uuid.UUID,
	origin Origin,
	customerName string,
	amount decimal.Decimal,
	currency Currency,
	rateToBase decimal.Decimal,
) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, validationError(CodeInvalidAmount, "Payment amount must be greater than zero")
	}
	if currency == "" {
		return nil, validationError(CodeInvalidCurrency, "Payment currency is required")
	}
	if !rateToBase.IsPositive() {
		return nil, &MissingRateError{Currency: currency}
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Origin:              origin,
		CustomerName:        strings.TrimSpace(customerName),
		Amount:              amount,
		Currency:            currency,
		RateToBase:          rateToBase,
		Status:              PaymentStatusPending,
		Receipts:            make([]Receipt, 0),
	}
	p.AddDomainEvent(NewPaymentCreatedEvent(p))
	return p, nil
}

// ExpectedTotal returns the amount owed in base currency
func (p *Payment) ExpectedTotal() decimal.Decimal {
	return ToBaseFrozen(p.Amount, p.RateToBase)
}

// ReceivedTotal returns the sum of non-voided receipts in base currency
func (p *Payment) ReceivedTotal() decimal.Decimal {
	return RoundBase(SumReceived(p.Receipts))
}

// Balance returns what is left to collect in base currency
func (p *Payment) Balance() decimal.Decimal {
	return settlementResidual(ConvertFrozen(p.Amount, p.RateToBase), SumReceived(p.Receipts))
}

// ReceiptRate returns the frozen rate for a new receipt in currency c. A
// receipt in the payment's own currency reuses the payment's rate, so paying
// the amount as billed always settles it whatever the rate table did since.
func (p *Payment) ReceiptRate(c Currency, table RateTable) (decimal.Decimal, error) {
	if c == p.Currency && p.RateToBase.IsPositive() {
		return p.RateToBase, nil
	}
	return FreezeRate(c, table)
}

// IsCanceled reports whether the payment was canceled
func (p *Payment) IsCanceled() bool {
	return p.CanceledAt != nil
}

// DerivedStatus recomputes the status from the authoritative receipt list
func (p *Payment) DerivedStatus() PaymentStatus {
	return DerivePaymentStatus(p.Amount, p.RateToBase, p.Receipts, p.Status == PaymentStatusCredit)
}

// RecordReceipt appends a receipt frozen at rateToBase and re-derives the status.
// A receipt that would make the payment overpaid is rejected.
func (p *Payment) RecordReceipt(in ReceiptInput, rateToBase decimal.Decimal) (*Receipt, error) {
	if p.IsCanceled() {
		return nil, AlreadyCanceledError("Payment")
	}
	if !in.Amount.IsPositive() {
		return nil, validationError(CodeInvalidAmount, "Receipt amount must be greater than zero")
	}
	if in.Method != "" && !in.Method.IsValid() {
		return nil, validationError(CodeInvalidMethod, "Unknown payment method %q", in.Method)
	}
	if !in.CollectionPoint.IsValid() {
		return nil, validationError(CodeInvalidMethod, "Unknown collection point %q", in.CollectionPoint)
	}
	if !rateToBase.IsPositive() {
		return nil, &MissingRateError{Currency: in.Currency}
	}

	now := time.Now()
	r := Receipt{
		ID:              uuid.New(),
		TenantID:        p.TenantID,
		PaymentID:       p.ID,
		Amount:          in.Amount,
		Currency:        in.Currency,
		RateToBase:      rateToBase,
		Method:          in.Method,
		CollectionPoint: in.CollectionPoint,
		Reference:       strings.TrimSpace(in.Reference),
		ReceivedBy:      in.ReceivedBy,
		ReceivedAt:      now,
		CreatedAt:       now,
	}
	if in.ReceivedAt != nil {
		r.ReceivedAt = *in.ReceivedAt
	}

	balance := p.Balance()
	after := settlementResidual(
		ConvertFrozen(p.Amount, p.RateToBase),
		SumReceived(p.Receipts).Add(ConvertFrozen(r.Amount, r.RateToBase)),
	)
	if !balance.IsPositive() || after.IsNegative() {
		return nil, BalanceExceededError(decimal.Max(balance, decimal.Zero))
	}

	p.Receipts = append(p.Receipts, r)
	p.AddDomainEvent(NewReceiptRecordedEvent(p, &r))

	// a fresh receipt always lifts the credit override
	p.ExpectedDate = nil
	p.applyStatus(DerivePaymentStatus(p.Amount, p.RateToBase, p.Receipts, false))
	p.IncrementVersion()
	return &p.Receipts[len(p.Receipts)-1], nil
}

// VoidReceipt flags a receipt as voided and re-derives the status. The
// receipt row is kept.
func (p *Payment) VoidReceipt(receiptID uuid.UUID, reason string, by uuid.UUID) error {
	if p.IsCanceled() {
		return AlreadyCanceledError("Payment")
	}
	idx := -1
	for i := range p.Receipts {
		if p.Receipts[i].ID == receiptID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NotFoundError("Receipt")
	}
	r := &p.Receipts[idx]
	if r.IsVoided() {
		return conflictError(CodeReceiptVoided, "Receipt has already been voided")
	}

	now := time.Now()
	r.VoidedAt = &now
	r.VoidReason = strings.TrimSpace(reason)
	if by != uuid.Nil {
		r.VoidedBy = &by
	}
	p.AddDomainEvent(NewReceiptVoidedEvent(p, r))

	p.applyStatus(p.DerivedStatus())
	p.IncrementVersion()
	return nil
}

// SetCredit puts the payment on credit until expectedDate. Only a fresh
// receipt moves it out of credit again.
func (p *Payment) SetCredit(expectedDate time.Time) error {
	if p.IsCanceled() {
		return AlreadyCanceledError("Payment")
	}
	if expectedDate.IsZero() {
		return validationError(CodeInvalidAmount, "An expected payment date is required for credit")
	}
	if p.Status.IsSettled() {
		return conflictError(CodeAlreadySettled, "Payment is already %s and cannot be put on credit", p.Status)
	}
	d := expectedDate
	p.ExpectedDate = &d
	p.applyStatus(PaymentStatusCredit)
	p.IncrementVersion()
	return nil
}

// Revise rewrites the amount owed and re-derives the status from what was
// already received. The result may be refund when receipts exceed the new amount.
func (p *Payment) Revise(newAmount decimal.Decimal) error {
	if p.IsCanceled() {
		return AlreadyCanceledError("Payment")
	}
	if newAmount.IsNegative() {
		return validationError(CodeInvalidAmount, "Payment amount cannot be negative")
	}
	p.Amount = newAmount
	status := p.DerivedStatus()
	if status != PaymentStatusCredit {
		p.ExpectedDate = nil
	}
	p.applyStatus(status)
	p.IncrementVersion()
	return nil
}

// Cancel flags the payment as canceled. Receipts are left untouched.
func (p *Payment) Cancel(at time.Time) error {
	if p.IsCanceled() {
		return AlreadyCanceledError("Payment")
	}
	p.CanceledAt = &at
	p.IncrementVersion()
	return nil
}

func (p *Payment) applyStatus(next PaymentStatus) {
	if next == p.Status {
		return
	}
	prev := p.Status
	p.Status = next
	p.AddDomainEvent(NewPaymentStatusChangedEvent(p, prev, next))
}
