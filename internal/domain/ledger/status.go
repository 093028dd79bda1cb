package ledger

import "github.com/shopspring/decimal"

// PaymentStatus is the derived settlement state of a customer payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusCredit  PaymentStatus = "credit"
	PaymentStatusRefund  PaymentStatus = "refund"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid,
		PaymentStatusCredit, PaymentStatusRefund:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsSettled reports whether nothing is left to collect
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentStatusPaid || s == PaymentStatusRefund
}

// SumReceived totals non-voided receipts in base currency using their frozen
// rates. The sum is exact; round it with RoundBase for reporting.
func SumReceived(receipts []Receipt) decimal.Decimal {
	total := decimal.Zero
	for i := range receipts {
		if receipts[i].IsVoided() {
			continue
		}
		total = total.Add(ConvertFrozen(receipts[i].Amount, receipts[i].RateToBase))
	}
	return total
}

// DerivePaymentStatus computes a payment's status from its terms and the full
// receipt list. creditInForce is true while a manual credit override has not
// been cleared by a fresh receipt.
func DerivePaymentStatus(amount, rateToBase decimal.Decimal, receipts []Receipt, creditInForce bool) PaymentStatus {
	received := SumReceived(receipts)
	residual := settlementResidual(ConvertFrozen(amount, rateToBase), received)

	switch {
	case residual.IsNegative():
		return PaymentStatusRefund
	case residual.IsZero():
		return PaymentStatusPaid
	case creditInForce:
		return PaymentStatusCredit
	case received.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}
