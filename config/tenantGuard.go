package config

import (
	"context"
	"strings"

	"bitbucket.org/flact/governance_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantGuardPlugin enforces multi-tenant isolation by automatically scoping
// queries/updates/deletes to the request's alliance_id when the model has an
// alliance_id column.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include alliance_id manually.
// - Admin/internal bypass is explicit via context flags.
type TenantGuardPlugin struct{}

func NewTenantGuardPlugin() *TenantGuardPlugin { return &TenantGuardPlugin{} }

func (p *TenantGuardPlugin) Name() string { return "tenant_guard" }

func (p *TenantGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant_guard:query", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("tenant_guard:row", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant_guard:update", tenantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenant_guard:delete", tenantGuardCallback); err != nil {
		return err
	}
	return nil
}

func tenantGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassTenantScope(ctx) {
		return
	}
	allianceID := allianceIdFromContext(ctx)
	if allianceID <= 0 {
		return
	}

	// Only apply if the current model/table includes an alliance_id column.
	if db.Statement.Schema == nil {
		return
	}
	hasAllianceID := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, "alliance_id") {
			hasAllianceID = true
			break
		}
	}
	if !hasAllianceID {
		return
	}

	// Don't duplicate an explicit tenant filter.
	if whereHasAllianceID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "alliance_id"},
				Value:  allianceID,
			},
		},
	})
}

func allianceIdFromContext(ctx context.Context) int {
	if v, ok := ctx.Value(appctx.ContextKeyAllianceId).(int); ok && v > 0 {
		return v
	}
	return 0
}

func shouldBypassTenantScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeySkipTenantScope).(bool); ok && v {
		return true
	}
	if v, ok := ctx.Value(appctx.ContextKeyIsAdmin).(bool); ok && v {
		return true
	}
	return false
}

func whereHasAllianceID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasAllianceID(e) {
			return true
		}
	}
	return false
}

func exprHasAllianceID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsAllianceID(v.Column)
	case clause.Neq:
		return colIsAllianceID(v.Column)
	case clause.IN:
		return colIsAllianceID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasAllianceID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasAllianceID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "alliance_id")
	default:
		return false
	}
}

func colIsAllianceID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "alliance_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "alliance_id")
	default:
		return false
	}
}
