package gate

import "context"

var roleCtxKey = &contextKey{"role"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithRoleContext sets the resolved Role in the given context
func WithRoleContext(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleCtxKey, role)
}

// RoleFromContext finds the Role from the context.
func RoleFromContext(ctx context.Context) (Role, bool) {
	raw, ok := ctx.Value(roleCtxKey).(Role)
	return raw, ok
}

// WithClaimsContext sets the decoded Claims in the given context
func WithClaimsContext(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// ClaimsFromContext extracts the Claims from the context
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(Claims)
	return raw, ok
}
