package authz

import "context"

// Principal is the authenticated actor resolved for the current request. The
// role is read fresh from the principal store per request, never from token
// claims, so a role change takes effect on the very next request.
type Principal struct {
	ID    int64
	Email string
	Name  string
	Role  Role
}

type principalContextKey struct{}

type scopeContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal placed by the guard.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// ContextWithScope stores the scope filter computed by the guard.
func ContextWithScope(ctx context.Context, f ScopeFilter) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, f)
}

// ScopeFromContext extracts the scope filter; the zero value means the
// request is unrestricted.
func ScopeFromContext(ctx context.Context) ScopeFilter {
	f, _ := ctx.Value(scopeContextKey{}).(ScopeFilter)
	return f
}
