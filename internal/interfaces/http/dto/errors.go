package dto

import (
	"errors"
	"net/http"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
)

// Transport level error codes. Business errors keep the code of the domain
// error that raised them.
const (
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeBadRequest         = "ERR_BAD_REQUEST"
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeInvalidJSON        = "ERR_INVALID_JSON"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeDuplicateRequest   = "DUPLICATE_REQUEST"
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps transport error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeDuplicateRequest:   http.StatusConflict,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for a transport error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// KindHTTPStatus maps domain error kinds to HTTP status codes
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:    http.StatusBadRequest,
	shared.KindMissingRate:   http.StatusBadRequest,
	shared.KindNotFound:      http.StatusNotFound,
	shared.KindStateConflict: http.StatusConflict,
	shared.KindForbidden:     http.StatusForbidden,
	shared.KindUpstreamIO:    http.StatusServiceUnavailable,
}

// balanceRuleCodes are state conflicts caused by amounts rather than by a
// record's lifecycle; they surface as 422
var balanceRuleCodes = map[string]bool{
	ledger.CodeBalanceExceeded:          true,
	ledger.CodeAvailableBalanceExceeded: true,
	ledger.CodeBalanceInsufficient:      true,
}

// ResolveError returns the status, code and message to send for err.
// Errors that are not domain errors become a generic 500.
func ResolveError(err error) (status int, code, message string) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred"
	}
	if balanceRuleCodes[de.Code] {
		return http.StatusUnprocessableEntity, de.Code, de.Message
	}
	status, ok := KindHTTPStatus[de.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return status, de.Code, de.Message
}
