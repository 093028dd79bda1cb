package shared

import "errors"

// ErrorKind groups error codes into the categories callers react to
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindStateConflict ErrorKind = "state_conflict"
	KindMissingRate   ErrorKind = "missing_rate"
	KindForbidden     ErrorKind = "forbidden"
	KindUpstreamIO    ErrorKind = "upstream_io"
)

// DomainError represents a domain-level error. Message is human readable and
// shown to back-office staff as is.
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"-"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so that wrapped sentinels compare equal
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error of the given kind
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// WithCause returns a copy of the error carrying err as its cause
func (e *DomainError) WithCause(err error) *DomainError {
	cp := *e
	cp.Err = err
	return &cp
}

// KindOf reports the kind of err, or the empty kind when err is not a DomainError
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrInvalidInput        = NewDomainError(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(KindStateConflict, "CONCURRENCY_CONFLICT", "Record was modified by another request, please retry")
	ErrForbidden           = NewDomainError(KindForbidden, "FORBIDDEN", "You do not have permission to perform this action")
	ErrUpstreamIO          = NewDomainError(KindUpstreamIO, "DATABASE_UNAVAILABLE", "The database is currently unreachable, please try again shortly")
)
