// Package tenant carries the authenticated tenant/user identity of a request.
//
// The scope travels on the request context and is set exactly once, by the
// auth middleware, before any data access runs. Reading an unset scope is a
// programming error and fails with ErrNoScope rather than yielding a zero
// tenant that could collide with real data.
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNoScope = errors.New("tenant scope not set: request is not authenticated")

// Scope identifies the tenant and user a request acts on behalf of.
type Scope struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying the given scope.
func NewContext(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, scope)
}

// FromContext extracts the scope from ctx. It fails with ErrNoScope when the
// scope was never set or carries a zero tenant id.
func FromContext(ctx context.Context) (Scope, error) {
	scope, ok := ctx.Value(contextKey{}).(Scope)
	if !ok || scope.TenantID == uuid.Nil {
		return Scope{}, ErrNoScope
	}
	return scope, nil
}
