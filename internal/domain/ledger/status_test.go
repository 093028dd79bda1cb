package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDerivePaymentStatus(t *testing.T) {
	now := time.Now()
	receipt := func(amount, rate string) Receipt {
		return Receipt{Amount: dec(amount), RateToBase: dec(rate)}
	}
	voided := Receipt{Amount: dec("500"), RateToBase: dec("1"), VoidedAt: &now}

	tests := []struct {
		name     string
		amount   string
		rate     string
		receipts []Receipt
		credit   bool
		want     PaymentStatus
	}{
		{"no receipts", "100", "1", nil, false, PaymentStatusPending},
		{"credit without receipts", "100", "1", nil, true, PaymentStatusCredit},
		{"credit with partial receipts", "100", "1", []Receipt{receipt("40", "1")}, true, PaymentStatusCredit},
		{"partial", "100", "1", []Receipt{receipt("40", "1")}, false, PaymentStatusPartial},
		{"paid exactly", "100", "1", []Receipt{receipt("40", "1"), receipt("60", "1")}, false, PaymentStatusPaid},
		{"paid wins over credit", "100", "1", []Receipt{receipt("100", "1")}, true, PaymentStatusPaid},
		{"overpaid is refund", "100", "1", []Receipt{receipt("101", "1")}, false, PaymentStatusRefund},
		{"voided receipts ignored", "100", "1", []Receipt{voided}, false, PaymentStatusPending},
		{"cross currency paid", "1000", "1", []Receipt{receipt("920", "1.0869565217")}, false, PaymentStatusPaid},
		{"zero amount is paid", "0", "1", nil, false, PaymentStatusPaid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DerivePaymentStatus(dec(tc.amount), dec(tc.rate), tc.receipts, tc.credit)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSumReceived(t *testing.T) {
	now := time.Now()
	receipts := []Receipt{
		{Amount: dec("100"), RateToBase: dec("1.0869565217")},
		{Amount: dec("375"), RateToBase: dec("0.2666666667")},
		{Amount: dec("999"), RateToBase: dec("1"), VoidedAt: &now},
	}

	assert.Equal(t, "208.6956521825", SumReceived(receipts).String())
	assert.True(t, RoundBase(SumReceived(receipts)).Equal(dec("208.70")))
}
