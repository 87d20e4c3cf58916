// Package store provides tenant-scoped data access over gorm.
//
// A Registry of explicitly listed tables installs callbacks on the write-side
// *gorm.DB so that every query, update and delete against a registered table
// is restricted to the tenant in the request scope, and every insert has its
// TenantID force-assigned from that scope. Statements with no scope fail with
// tenant.ErrNoScope. The only way around the filter is the named CrossTenant
// escape hatch, so every unscoped access site can be found with a grep.
package store

import (
	"context"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hugh/buildtrack/internal/tenant"
)

type crossTenantKey struct{}

// CrossTenant marks ctx as exempt from tenant scoping. It exists for the
// cross-tenant lookups in the auth service and for admin tooling; everything
// else goes through the ambient filter.
func CrossTenant(ctx context.Context) context.Context {
	return context.WithValue(ctx, crossTenantKey{}, true)
}

func isCrossTenant(ctx context.Context) bool {
	exempt, _ := ctx.Value(crossTenantKey{}).(bool)
	return exempt
}

// Registry holds the set of tables subject to tenant scoping. Tables are
// registered explicitly at composition time, never discovered.
type Registry struct {
	scoped map[string]bool
}

func NewRegistry(tables ...string) *Registry {
	scoped := make(map[string]bool, len(tables))
	for _, t := range tables {
		scoped[t] = true
	}
	return &Registry{scoped: scoped}
}

// Install registers the scoping callbacks on db. Only statements against
// registered tables are touched.
func (r *Registry) Install(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Query().Before("gorm:query").Register("buildtrack:scope_query", r.filter); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("buildtrack:scope_row", r.filter); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("buildtrack:scope_update", r.filterUpdate); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("buildtrack:scope_delete", r.filter); err != nil {
		return err
	}
	return cb.Create().Before("gorm:create").Register("buildtrack:scope_create", r.assignTenant)
}

// filter narrows the statement to the scoped tenant's rows.
func (r *Registry) filter(db *gorm.DB) {
	stmt := db.Statement
	if stmt.Table == "" || !r.scoped[stmt.Table] || isCrossTenant(stmt.Context) {
		return
	}

	scope, err := tenant.FromContext(stmt.Context)
	if err != nil {
		_ = db.AddError(err)
		return
	}

	stmt.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: "tenant_id"},
			Value:  scope.TenantID,
		},
	}})
}

// filterUpdate additionally drops tenant_id from the SET list. A caller that
// mutated the field on its copy cannot move a row between tenants.
func (r *Registry) filterUpdate(db *gorm.DB) {
	stmt := db.Statement
	if stmt.Table == "" || !r.scoped[stmt.Table] {
		return
	}

	stmt.Omits = append(stmt.Omits, "tenant_id")

	if isCrossTenant(stmt.Context) {
		return
	}
	scope, err := tenant.FromContext(stmt.Context)
	if err != nil {
		_ = db.AddError(err)
		return
	}
	stmt.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: "tenant_id"},
			Value:  scope.TenantID,
		},
	}})
}

// assignTenant stamps inserted rows with the scoped tenant id, regardless of
// what the caller put in the struct. Cross-tenant inserts (registration,
// seeding) keep the id the caller set.
func (r *Registry) assignTenant(db *gorm.DB) {
	stmt := db.Statement
	if stmt.Schema == nil || !r.scoped[stmt.Table] || isCrossTenant(stmt.Context) {
		return
	}

	scope, err := tenant.FromContext(stmt.Context)
	if err != nil {
		_ = db.AddError(err)
		return
	}

	field := stmt.Schema.LookUpField("TenantID")
	if field == nil {
		return
	}

	switch stmt.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < stmt.ReflectValue.Len(); i++ {
			_ = field.Set(stmt.Context, stmt.ReflectValue.Index(i), scope.TenantID)
		}
	case reflect.Struct:
		_ = field.Set(stmt.Context, stmt.ReflectValue, scope.TenantID)
	}
}
