package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
)

func TestPayableService_DisbursementLifecycle(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	tenantID, clerk, approver := uuid.New(), uuid.New(), uuid.New()
	sale := sellTicket(t, s, tenantID, "176-0000000101", "600", "500")
	payableID := sale.Payable.ID

	pp, err := s.payables.SubmitPayablePayment(ctx, tenantID, clerk, payableID, SubmitPayablePaymentRequest{
		Amount: dec("300"), Method: "bank_transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, string(ledger.PayablePaymentPending), pp.Status)

	_, err = s.payables.SubmitPayablePayment(ctx, tenantID, clerk, payableID, SubmitPayablePaymentRequest{
		Amount: dec("250"),
	})
	requireCode(t, err, ledger.CodeAvailableBalanceExceeded)

	_, err = s.payables.MarkPayablePaymentPaid(ctx, tenantID, approver, pp.ID)
	requireCode(t, err, ledger.CodeNotApproved)

	approved, err := s.payables.ApprovePayablePayment(ctx, tenantID, approver, pp.ID)
	require.NoError(t, err)
	assert.Equal(t, string(ledger.PayablePaymentApproved), approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, approver, *approved.ApprovedBy)

	_, err = s.payables.ApprovePayablePayment(ctx, tenantID, approver, pp.ID)
	requireCode(t, err, ledger.CodeNotPending)

	paid, err := s.payables.MarkPayablePaymentPaid(ctx, tenantID, approver, pp.ID)
	require.NoError(t, err)
	assert.Equal(t, string(ledger.PayablePaymentPaid), paid.Status)

	payable, err := s.query.GetPayable(ctx, tenantID, payableID)
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(payable.Balance))
	assert.True(t, dec("200").Equal(payable.Available))
	assert.Equal(t, string(ledger.PayableStatusPartial), payable.Status)

	assert.Equal(t, []string{"pending", "approved", "paid"}, s.metrics.disbursements)
}

func TestPayableService_SubmitRejectsCanceledPayable(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	tenantID := uuid.New()
	sale := sellTicket(t, s, tenantID, "176-0000000102", "600", "500")

	_, err := s.sources.CancelSource(ctx, tenantID, ledger.OriginTicket, sale.Ticket.ID)
	require.NoError(t, err)

	_, err = s.payables.SubmitPayablePayment(ctx, tenantID, uuid.New(), sale.Payable.ID, SubmitPayablePaymentRequest{
		Amount: dec("100"),
	})
	requireCode(t, err, ledger.CodeAlreadyCanceled)
}

func TestPayableService_UnknownDisbursement(t *testing.T) {
	s := setupServices(t)
	_, err := s.payables.ApprovePayablePayment(context.Background(), uuid.New(), uuid.New(), uuid.New())
	requireKind(t, err, shared.KindNotFound)
}
