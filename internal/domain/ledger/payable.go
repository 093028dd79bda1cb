package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/shared"
)

// PayablePaymentStatus is the lifecycle of a disbursement request.
// Transitions are forward only: pending, approved, paid.
type PayablePaymentStatus string

const (
	PayablePaymentPending  PayablePaymentStatus = "pending"
	PayablePaymentApproved PayablePaymentStatus = "approved"
	PayablePaymentPaid     PayablePaymentStatus = "paid"
)

// IsValid checks if the status is known
func (s PayablePaymentStatus) IsValid() bool {
	switch s {
	case PayablePaymentPending, PayablePaymentApproved, PayablePaymentPaid:
		return true
	}
	return false
}

// String returns the string representation of PayablePaymentStatus
func (s PayablePaymentStatus) String() string {
	return string(s)
}

// IsInFlight reports whether the request reserves part of the payable balance
func (s PayablePaymentStatus) IsInFlight() bool {
	return s == PayablePaymentPending || s == PayablePaymentApproved
}

// PayableStatus is derived from balance and amount
type PayableStatus string

const (
	PayableStatusOpen    PayableStatus = "open"
	PayableStatusPartial PayableStatus = "partial"
	PayableStatusSettled PayableStatus = "settled"
)

// PayablePayment is a disbursement request against a Payable
type PayablePayment struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	PayableID   uuid.UUID
	Amount      decimal.Decimal
	Method      PaymentMethod
	Status      PayablePaymentStatus
	Reference   string
	PaymentDate *time.Time
	RequestedBy uuid.UUID
	RequestedAt time.Time
	ApprovedBy  *uuid.UUID
	ApprovedAt  *time.Time
	PaidBy      *uuid.UUID
	PaidAt      *time.Time
}

// PayablePaymentInput carries the caller-supplied fields of a new disbursement
type PayablePaymentInput struct {
	Amount      decimal.Decimal
	Method      PaymentMethod
	Reference   string
	PaymentDate *time.Time
	RequestedBy uuid.UUID
}

// Payable is money owed to a vendor. Balance is the unpaid remainder and
// only shrinks when a disbursement is marked paid.
type Payable struct {
	shared.TenantAggregateRoot
	Origin     Origin
	VendorName string
	Amount     decimal.Decimal
	Balance    decimal.Decimal
	Currency   Currency
	RateToBase decimal.Decimal
	CanceledAt *time.Time
	Payments   []PayablePayment
}

// NewPayable creates a payable whose balance equals its amount
func NewPayable(
	tenantID uuid.UUID,
	origin Origin,
	vendorName string,
	amount decimal.Decimal,
	currency Currency,
	rateToBase decimal.Decimal,
) (*Payable, error) {
	if !amount.IsPositive() {
		return nil, validationError(CodeInvalidAmount, "Payable amount must be greater than zero")
	}
	if currency == "" {
		return nil, validationError(CodeInvalidCurrency, "Payable currency is required")
	}
	if !rateToBase.IsPositive() {
		return nil, &MissingRateError{Currency: currency}
	}

	p := &Payable{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Origin:              origin,
		VendorName:          strings.TrimSpace(vendorName),
		Amount:              amount,
		Balance:             amount,
		Currency:            currency,
		RateToBase:          rateToBase,
		Payments:            make([]PayablePayment, 0),
	}
	p.AddDomainEvent(NewPayableCreatedEvent(p))
	return p, nil
}

// IsCanceled reports whether the payable was canceled
func (p *Payable) IsCanceled() bool {
	return p.CanceledAt != nil
}

// PendingOrApprovedTotal sums the in-flight disbursement requests
func (p *Payable) PendingOrApprovedTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Payments {
		if p.Payments[i].Status.IsInFlight() {
			total = total.Add(p.Payments[i].Amount)
		}
	}
	return total
}

// PaidTotal sums the disbursements already marked paid
func (p *Payable) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Payments {
		if p.Payments[i].Status == PayablePaymentPaid {
			total = total.Add(p.Payments[i].Amount)
		}
	}
	return total
}

// Available is the balance not yet reserved by in-flight requests
func (p *Payable) Available() decimal.Decimal {
	return p.Balance.Sub(p.PendingOrApprovedTotal())
}

// BaseBalance returns the balance in base currency at the frozen rate
func (p *Payable) BaseBalance() decimal.Decimal {
	return ToBaseFrozen(p.Balance, p.RateToBase)
}

// Status derives the settlement state from the balance
func (p *Payable) Status() PayableStatus {
	switch {
	case !p.Balance.IsPositive():
		return PayableStatusSettled
	case p.Balance.LessThan(p.Amount):
		return PayableStatusPartial
	default:
		return PayableStatusOpen
	}
}

// FindPayment returns the disbursement with the given id
func (p *Payable) FindPayment(id uuid.UUID) (*PayablePayment, error) {
	for i := range p.Payments {
		if p.Payments[i].ID == id {
			return &p.Payments[i], nil
		}
	}
	return nil, NotFoundError("Payable payment")
}

// SubmitPayment records a pending disbursement request. The request plus all
// in-flight requests must fit in the remaining balance.
func (p *Payable) SubmitPayment(in PayablePaymentInput) (*PayablePayment, error) {
	if p.IsCanceled() {
		return nil, AlreadyCanceledError("Payable")
	}
	if !in.Amount.IsPositive() {
		return nil, validationError(CodeInvalidAmount, "Payment amount must be greater than zero")
	}
	if in.Method != "" && !in.Method.IsValid() {
		return nil, validationError(CodeInvalidMethod, "Unknown payment method %q", in.Method)
	}
	available := p.Available()
	if in.Amount.GreaterThan(available) {
		return nil, AvailableBalanceExceededError(decimal.Max(available, decimal.Zero), p.Currency)
	}

	pp := PayablePayment{
		ID:          uuid.New(),
		TenantID:    p.TenantID,
		PayableID:   p.ID,
		Amount:      in.Amount,
		Method:      in.Method,
		Status:      PayablePaymentPending,
		Reference:   strings.TrimSpace(in.Reference),
		PaymentDate: in.PaymentDate,
		RequestedBy: in.RequestedBy,
		RequestedAt: time.Now(),
	}
	p.Payments = append(p.Payments, pp)
	p.AddDomainEvent(NewPayablePaymentSubmittedEvent(p, &pp))
	p.IncrementVersion()
	return &p.Payments[len(p.Payments)-1], nil
}

// ApprovePayment moves a pending request to approved
func (p *Payable) ApprovePayment(paymentID, approver uuid.UUID) (*PayablePayment, error) {
	if p.IsCanceled() {
		return nil, AlreadyCanceledError("Payable")
	}
	pp, err := p.FindPayment(paymentID)
	if err != nil {
		return nil, err
	}
	if pp.Status != PayablePaymentPending {
		return nil, NotPendingError(pp.Status)
	}

	now := time.Now()
	pp.Status = PayablePaymentApproved
	pp.ApprovedBy = &approver
	pp.ApprovedAt = &now
	p.AddDomainEvent(NewPayablePaymentApprovedEvent(p, pp))
	p.IncrementVersion()
	return pp, nil
}

// MarkPaymentPaid settles an approved request and decrements the balance.
// The balance is checked again since other disbursements may have been paid
// after this one was approved.
func (p *Payable) MarkPaymentPaid(paymentID, payer uuid.UUID) (*PayablePayment, error) {
	if p.IsCanceled() {
		return nil, AlreadyCanceledError("Payable")
	}
	pp, err := p.FindPayment(paymentID)
	if err != nil {
		return nil, err
	}
	if pp.Status != PayablePaymentApproved {
		return nil, NotApprovedError(pp.Status)
	}
	if pp.Amount.GreaterThan(p.Balance) {
		return nil, BalanceInsufficientError(p.Balance, p.Currency)
	}

	now := time.Now()
	pp.Status = PayablePaymentPaid
	pp.PaidBy = &payer
	pp.PaidAt = &now
	p.Balance = p.Balance.Sub(pp.Amount)
	p.AddDomainEvent(NewPayablePaymentPaidEvent(p, pp))
	p.IncrementVersion()
	return pp, nil
}

// Revise rewrites the amount owed while keeping what was already paid.
// The balance floors at zero when the new amount is below the paid total.
func (p *Payable) Revise(newAmount decimal.Decimal) error {
	if p.IsCanceled() {
		return AlreadyCanceledError("Payable")
	}
	if newAmount.IsNegative() {
		return validationError(CodeInvalidAmount, "Payable amount cannot be negative")
	}
	p.Amount = newAmount
	p.Balance = decimal.Max(decimal.Zero, newAmount.Sub(p.PaidTotal()))
	p.IncrementVersion()
	return nil
}

// Cancel flags the payable as canceled. Disbursements are left untouched.
func (p *Payable) Cancel(at time.Time) error {
	if p.IsCanceled() {
		return AlreadyCanceledError("Payable")
	}
	p.CanceledAt = &at
	p.IncrementVersion()
	return nil
}
