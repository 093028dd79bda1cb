package tenant

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const skipKey = "tenant:skip_guard"

// SkipGuard marks a statement as intentionally cross-tenant. Only system
// work such as outbox delivery may use it.
func SkipGuard(db *gorm.DB) *gorm.DB {
	return db.Set(skipKey, true)
}

// Guard rejects reads, updates and deletes on tables with a tenant column
// unless the statement carries a tenant_id condition
type Guard struct {
	column string
}

// NewGuard creates a guard for the default tenant column
func NewGuard() *Guard {
	return &Guard{column: Column}
}

// Register installs the guard callbacks on db
func (g *Guard) Register(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant:guard_query", g.check); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenant:guard_row", g.check); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant:guard_update", g.check); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register("tenant:guard_delete", g.check)
}

func (g *Guard) check(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	if skip, ok := db.Get(skipKey); ok && skip == true {
		return
	}
	if db.Statement.Schema == nil || db.Statement.Schema.LookUpField(g.column) == nil {
		return
	}
	if g.hasTenantCondition(db) {
		return
	}
	_ = db.AddError(ErrTenantScopeMissing)
}

func (g *Guard) hasTenantCondition(db *gorm.DB) bool {
	if c, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := c.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if g.exprContainsTenant(expr) {
					return true
				}
			}
		}
	}
	// raw SQL carries its own conditions
	sql := db.Statement.SQL.String()
	return sql != "" && strings.Contains(sql, g.column)
}

func (g *Guard) exprContainsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == g.column
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == g.column
		}
	case clause.Expr:
		return strings.Contains(e.SQL, g.column)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if g.exprContainsTenant(cond) {
				return true
			}
		}
	}
	return false
}
