// Package authcontext carries the authenticated identity through a
// request. Services read it to decide row-level visibility.
package authcontext

import (
	"context"

	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
)

type identityKey struct{}

// WithIdentity stores the resolved identity in the context.
func WithIdentity(ctx context.Context, id identitydomain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the resolved identity, if set.
func IdentityFromContext(ctx context.Context) (identitydomain.Identity, bool) {
	if ctx == nil {
		return identitydomain.Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(identitydomain.Identity)
	return id, ok
}
