package middleware

import (
	"context"

	"github.com/openlancer/lancer/internal/application/ports"
)

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity injects the authenticated identity into the context.
func WithIdentity(ctx context.Context, id *ports.AccessIdentity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the authenticated identity, or nil.
func IdentityFromContext(ctx context.Context) *ports.AccessIdentity {
	v := ctx.Value(identityContextKey)
	if v == nil {
		return nil
	}
	id, _ := v.(*ports.AccessIdentity)
	return id
}
