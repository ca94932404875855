package middleware

import (
	"context"

	"github.com/kabisoft/kabipos-backend/internal/auth"
)

type contextKey string

const ctxTenant contextKey = "tenant"

// WithTenant injects the authenticated tenant into the context.
func WithTenant(ctx context.Context, identity *auth.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenant, identity)
}

// TenantFromContext returns the tenant resolved by Auth or APIKeyAuth.
func TenantFromContext(ctx context.Context) (*auth.Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	identity, ok := ctx.Value(ctxTenant).(*auth.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
