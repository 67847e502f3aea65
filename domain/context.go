package domain

import "context"

type identityContextKey struct{}

// ContextWithIdentity stores the verified identity in the request context.
// Only the authentication middleware writes this; handlers and services
// derive the acting user exclusively from it, never from request content.
func ContextWithIdentity(ctx context.Context, identity *UserIdentity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext retrieves the verified identity, if any.
func IdentityFromContext(ctx context.Context) (*UserIdentity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*UserIdentity)
	return identity, ok
}
