// Package tenant provides multi-tenant database scoping for GORM.
//
// Every ledger repository is built from a DB already narrowed with Scope,
// and the Guard callbacks reject any statement on a tenant table that
// reaches the database without a tenant_id condition.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column is the tenant discriminator column present on every ledger table
const Column = "tenant_id"

// ErrTenantIDRequired is returned when a scope is requested without a tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// ErrTenantScopeMissing is returned by the guard for unscoped statements
var ErrTenantScopeMissing = errors.New("statement on a tenant table has no tenant_id condition")

// Scope restricts a statement to one tenant. The condition is bound to the
// statement's own table so it stays unambiguous in joins.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: Column},
			Value:  tenantID,
		})
	}
}
