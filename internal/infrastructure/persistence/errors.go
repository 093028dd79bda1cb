package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/travelops/backoffice/internal/domain/ledger"
	"github.com/travelops/backoffice/internal/domain/shared"
)

// ClassifyError maps connectivity failures to ErrUpstreamIO so callers can
// tell "the database is unreachable" apart from business rule violations.
// Other errors are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if shared.KindOf(err) != "" {
		return err
	}
	if isConnectivityError(err) {
		return shared.ErrUpstreamIO.WithCause(err)
	}
	return err
}

func isConnectivityError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "sql: database is closed")
}

var errReadOnly = errors.New("write attempted through a read-only view")

// errVersionConflict is returned when an optimistic version check fails
var errVersionConflict = shared.ErrConcurrencyConflict

func notFound(entity string) error {
	return ledger.NotFoundError(entity)
}
