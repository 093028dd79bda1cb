package dto

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
)

func TestResolveError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", shared.ErrInvalidInput, http.StatusBadRequest, shared.ErrInvalidInput.Code},
		{"missing rate", &ledger.MissingRateError{Currency: "EUR"}, http.StatusBadRequest, ledger.CodeMissingRate},
		{"not found", ledger.NotFoundError("Payment"), http.StatusNotFound, shared.ErrNotFound.Code},
		{"lifecycle conflict", ledger.AlreadyCanceledError("Payment"), http.StatusConflict, ledger.CodeAlreadyCanceled},
		{"not pending", ledger.NotPendingError(ledger.PayablePaymentApproved), http.StatusConflict, ledger.CodeNotPending},
		{"balance exceeded", ledger.BalanceExceededError(decimal.NewFromInt(10)), http.StatusUnprocessableEntity, ledger.CodeBalanceExceeded},
		{"available exceeded", ledger.AvailableBalanceExceededError(decimal.Zero, "USD"), http.StatusUnprocessableEntity, ledger.CodeAvailableBalanceExceeded},
		{"insufficient", ledger.BalanceInsufficientError(decimal.Zero, "USD"), http.StatusUnprocessableEntity, ledger.CodeBalanceInsufficient},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, shared.ErrForbidden.Code},
		{"upstream", shared.ErrUpstreamIO, http.StatusServiceUnavailable, shared.ErrUpstreamIO.Code},
		{"wrapped", fmt.Errorf("recording receipt: %w", ledger.NotFoundError("Payment")), http.StatusNotFound, shared.ErrNotFound.Code},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, message := ResolveError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, message)
		})
	}
}

func TestResolveError_KeepsHumanMessage(t *testing.T) {
	_, _, message := ResolveError(&ledger.MissingRateError{Currency: "EUR"})
	assert.Contains(t, message, "EUR")

	_, _, message = ResolveError(errors.New("pq: password authentication failed"))
	assert.Equal(t, "An unexpected error occurred", message)
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(ErrCodeDuplicateRequest))
	assert.Equal(t, http.StatusRequestEntityTooLarge, GetHTTPStatus(ErrCodeRequestTooLarge))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ELSE"))
}
