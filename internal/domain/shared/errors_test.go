package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	custom := NewDomainError(KindNotFound, "NOT_FOUND", "Payment not found")
	wrapped := fmt.Errorf("load payment: %w", custom)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrConcurrencyConflict))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"domain error", ErrInvalidInput, KindValidation},
		{"wrapped upstream", fmt.Errorf("x: %w", ErrUpstreamIO), KindUpstreamIO},
		{"plain error", errors.New("plain"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestDomainError_WithCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ErrUpstreamIO.WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstreamIO)
	assert.Nil(t, ErrUpstreamIO.Err)
}
