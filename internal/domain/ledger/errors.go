package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/travelops/backoffice/internal/domain/shared"
)

// Error codes surfaced to API callers
const (
	CodeInvalidAmount            = "INVALID_AMOUNT"
	CodeInvalidCurrency          = "INVALID_CURRENCY"
	CodeInvalidOrigin            = "INVALID_ORIGIN"
	CodeInvalidMethod            = "INVALID_PAYMENT_METHOD"
	CodeInvalidAdjustment        = "INVALID_ADJUSTMENT"
	CodeMissingRate              = "MISSING_RATE"
	CodeBalanceExceeded          = "BALANCE_EXCEEDED"
	CodeAvailableBalanceExceeded = "AVAILABLE_BALANCE_EXCEEDED"
	CodeBalanceInsufficient      = "BALANCE_INSUFFICIENT"
	CodeNotPending               = "NOT_PENDING"
	CodeNotApproved              = "NOT_APPROVED"
	CodeAlreadyCanceled          = "ALREADY_CANCELED"
	CodeAlreadySettled           = "ALREADY_SETTLED"
	CodeReceiptVoided            = "RECEIPT_ALREADY_VOIDED"
	CodeDuplicateOrigin          = "DUPLICATE_ORIGIN"
)

func validationError(code, format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(shared.KindValidation, code, fmt.Sprintf(format, args...))
}

func conflictError(code, format string, args ...any) *shared.DomainError {
	return shared.NewDomainError(shared.KindStateConflict, code, fmt.Sprintf(format, args...))
}

// NotFoundError reports an entity that does not exist in the caller's tenant
func NotFoundError(entity string) *shared.DomainError {
	return shared.NewDomainError(shared.KindNotFound, shared.ErrNotFound.Code, entity+" not found")
}

// BalanceExceededError is returned when a receipt would overpay its payment
func BalanceExceededError(remaining decimal.Decimal) *shared.DomainError {
	return conflictError(CodeBalanceExceeded,
		"Amount cannot exceed the remaining balance. Remaining: %s", FormatMoney(remaining, BaseCurrency))
}

// AvailableBalanceExceededError is returned when a disbursement request exceeds
// the payable balance left after in-flight requests
func AvailableBalanceExceededError(available decimal.Decimal, currency Currency) *shared.DomainError {
	return conflictError(CodeAvailableBalanceExceeded,
		"Amount cannot exceed available balance. Available: %s", FormatMoney(available, currency))
}

// BalanceInsufficientError is returned when a payable can no longer cover an approved disbursement
func BalanceInsufficientError(balance decimal.Decimal, currency Currency) *shared.DomainError {
	return conflictError(CodeBalanceInsufficient,
		"Payable balance is insufficient for this payment. Balance: %s", FormatMoney(balance, currency))
}

// NotPendingError is returned when approving a disbursement that is not pending
func NotPendingError(status PayablePaymentStatus) *shared.DomainError {
	return conflictError(CodeNotPending, "Only pending payments can be approved, this one is %s", status)
}

// NotApprovedError is returned when paying a disbursement that was not approved
func NotApprovedError(status PayablePaymentStatus) *shared.DomainError {
	return conflictError(CodeNotApproved, "Only approved payments can be marked as paid, this one is %s", status)
}

// AlreadyCanceledError is returned for any mutation of a canceled record
func AlreadyCanceledError(entity string) *shared.DomainError {
	return conflictError(CodeAlreadyCanceled, "%s has already been canceled", entity)
}

// InvalidAdjustmentError is returned when revised ticket figures are inconsistent
func InvalidAdjustmentError(format string, args ...any) *shared.DomainError {
	return validationError(CodeInvalidAdjustment, format, args...)
}

// MissingRateError reports that no positive exchange rate is configured for a
// currency. It unwraps to a DomainError so HTTP mapping treats it uniformly.
type MissingRateError struct {
	Currency Currency
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("No exchange rate is configured for %s, ask an administrator to set one", e.Currency)
}

func (e *MissingRateError) Unwrap() error {
	return shared.NewDomainError(shared.KindMissingRate, CodeMissingRate, e.Error())
}

// FormatMoney renders an amount for user-facing messages
func FormatMoney(amount decimal.Decimal, currency Currency) string {
	if currency == BaseCurrency || currency == "" {
		return "$" + amount.StringFixed(2)
	}
	return amount.StringFixed(2) + " " + string(currency)
}
