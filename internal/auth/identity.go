package auth

import (
	"context"
	"time"
)

// Identity is the authenticated admin attached to a request context.
type Identity struct {
	Username  string
	ExpiresAt time.Time
}

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(Identity)
	return identity, ok
}
