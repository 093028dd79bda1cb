package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelops/backoffice/internal/domain/shared"
)

func newUSDPayable(t *testing.T, amount string) *Payable {
	t.Helper()
	p, err := NewPayable(uuid.New(), TicketOrigin(uuid.New()), "Emirates", dec(amount), "USD", dec("1"))
	require.NoError(t, err)
	return p
}

func submit(p *Payable, amount string) (*PayablePayment, error) {
	return p.SubmitPayment(PayablePaymentInput{Amount: dec(amount), Method: MethodBankTransfer, RequestedBy: uuid.New()})
}

func assertPayableInvariant(t *testing.T, p *Payable) {
	t.Helper()
	assert.True(t, p.Balance.Equal(p.Amount.Sub(p.PaidTotal())), "balance %s amount %s paid %s", p.Balance, p.Amount, p.PaidTotal())
	assert.False(t, p.Balance.IsNegative())
}

func TestPayablePaymentStatus_IsInFlight(t *testing.T) {
	tests := []struct {
		status   PayablePaymentStatus
		expected bool
	}{
		{PayablePaymentPending, true},
		{PayablePaymentApproved, true},
		{PayablePaymentPaid, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.IsInFlight())
			assert.True(t, tc.status.IsValid())
		})
	}
}

func TestNewPayable(t *testing.T) {
	p := newUSDPayable(t, "500")

	assert.True(t, p.Balance.Equal(dec("500")))
	assert.Equal(t, PayableStatusOpen, p.Status())
	assert.True(t, p.Available().Equal(dec("500")))

	_, err := NewPayable(uuid.New(), NoOrigin(), "v", dec("-1"), "USD", dec("1"))
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestPayable_DisbursementScenario(t *testing.T) {
	p := newUSDPayable(t, "500")

	a, err := submit(p, "300")
	require.NoError(t, err)
	aID := a.ID
	assert.Equal(t, PayablePaymentPending, a.Status)
	assert.True(t, p.Available().Equal(dec("200")))

	_, err = submit(p, "250")
	require.Error(t, err)
	assert.Equal(t, "Amount cannot exceed available balance. Available: $200.00", err.Error())
	assert.ErrorIs(t, err, AvailableBalanceExceededError(decimal.Zero, "USD"))

	b, err := submit(p, "200")
	require.NoError(t, err)
	bID := b.ID
	assert.True(t, p.Available().IsZero())

	approver := uuid.New()
	approved, err := p.ApprovePayment(aID, approver)
	require.NoError(t, err)
	assert.Equal(t, PayablePaymentApproved, approved.Status)
	assert.Equal(t, approver, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	payer := uuid.New()
	paid, err := p.MarkPaymentPaid(aID, payer)
	require.NoError(t, err)
	assert.Equal(t, PayablePaymentPaid, paid.Status)
	assert.Equal(t, payer, *paid.PaidBy)

	assert.True(t, p.Balance.Equal(dec("200")))
	assert.True(t, p.PendingOrApprovedTotal().Equal(dec("200")))
	assert.True(t, p.Available().IsZero())
	assert.Equal(t, PayableStatusPartial, p.Status())
	assertPayableInvariant(t, p)

	_, err = p.ApprovePayment(bID, approver)
	require.NoError(t, err)
	_, err = p.MarkPaymentPaid(bID, payer)
	require.NoError(t, err)
	assert.True(t, p.Balance.IsZero())
	assert.Equal(t, PayableStatusSettled, p.Status())
	assertPayableInvariant(t, p)
}

func TestPayable_TransitionsAreForwardOnly(t *testing.T) {
	p := newUSDPayable(t, "100")
	pp, err := submit(p, "50")
	require.NoError(t, err)
	id := pp.ID

	_, err = p.MarkPaymentPaid(id, uuid.New())
	assert.ErrorIs(t, err, NotApprovedError(PayablePaymentPending))

	_, err = p.ApprovePayment(id, uuid.New())
	require.NoError(t, err)
	_, err = p.ApprovePayment(id, uuid.New())
	assert.ErrorIs(t, err, NotPendingError(PayablePaymentApproved))

	_, err = p.MarkPaymentPaid(id, uuid.New())
	require.NoError(t, err)
	_, err = p.MarkPaymentPaid(id, uuid.New())
	assert.ErrorIs(t, err, NotApprovedError(PayablePaymentPaid))

	_, err = p.ApprovePayment(uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPayable_MarkPaid_RechecksBalance(t *testing.T) {
	p := newUSDPayable(t, "100")
	pp, err := submit(p, "80")
	require.NoError(t, err)
	id := pp.ID
	_, err = p.ApprovePayment(id, uuid.New())
	require.NoError(t, err)

	// cost revised down after approval
	require.NoError(t, p.Revise(dec("60")))

	_, err = p.MarkPaymentPaid(id, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, BalanceInsufficientError(decimal.Zero, "USD"))
	assert.True(t, p.Balance.Equal(dec("60")))
}

func TestPayable_Revise(t *testing.T) {
	tests := []struct {
		name        string
		paid        string
		newAmount   string
		wantBalance string
	}{
		{"increase keeps paid portion", "300", "700", "400"},
		{"decrease above paid", "300", "350", "50"},
		{"decrease below paid floors at zero", "300", "200", "0"},
		{"nothing paid", "0", "250", "250"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newUSDPayable(t, "500")
			if dec(tc.paid).IsPositive() {
				pp, err := submit(p, tc.paid)
				require.NoError(t, err)
				id := pp.ID
				_, err = p.ApprovePayment(id, uuid.New())
				require.NoError(t, err)
				_, err = p.MarkPaymentPaid(id, uuid.New())
				require.NoError(t, err)
			}
			require.NoError(t, p.Revise(dec(tc.newAmount)))
			assert.True(t, p.Balance.Equal(dec(tc.wantBalance)), "balance %s", p.Balance)
			assert.True(t, p.Amount.Equal(dec(tc.newAmount)))
		})
	}
}

func TestPayable_CanceledRejectsMutation(t *testing.T) {
	p := newUSDPayable(t, "100")
	pp, err := submit(p, "10")
	require.NoError(t, err)
	id := pp.ID
	require.NoError(t, p.Cancel(time.Now()))

	_, err = submit(p, "10")
	assert.ErrorIs(t, err, AlreadyCanceledError("Payable"))
	_, err = p.ApprovePayment(id, uuid.New())
	assert.ErrorIs(t, err, AlreadyCanceledError("Payable"))
	_, err = p.MarkPaymentPaid(id, uuid.New())
	assert.ErrorIs(t, err, AlreadyCanceledError("Payable"))
	assert.ErrorIs(t, p.Revise(dec("1")), AlreadyCanceledError("Payable"))
}

func TestPayable_EventsRecorded(t *testing.T) {
	p := newUSDPayable(t, "100")
	p.ClearDomainEvents()

	pp, err := submit(p, "40")
	require.NoError(t, err)
	id := pp.ID
	_, err = p.ApprovePayment(id, uuid.New())
	require.NoError(t, err)
	_, err = p.MarkPaymentPaid(id, uuid.New())
	require.NoError(t, err)

	var types []string
	for _, e := range p.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{
		EventTypePayablePaymentSubmitted,
		EventTypePayablePaymentApproved,
		EventTypePayablePaymentPaid,
	}, types)
}
