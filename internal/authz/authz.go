// Package authz carries the admin capability resolved by the transport
// layer. The service layer only ever asks IsAdmin; how the bit was
// derived from credentials is not its concern.
package authz

import "context"

type contextKey struct{}

// WithAdmin returns a copy of ctx carrying the given capability.
func WithAdmin(ctx context.Context, isAdmin bool) context.Context {
	return context.WithValue(ctx, contextKey{}, isAdmin)
}

// IsAdmin reports whether ctx carries the admin capability. A context
// without the value is treated as non-admin.
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(contextKey{}).(bool)
	return v
}
