package auth

import "context"

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

// WithIdentity returns a context carrying the resolved identity. The HTTP
// middleware sets it; handlers read it via IdentityFrom.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity from context and true if set.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

var activeTokenKey = contextKey{"activeToken"}

// WithActiveToken records the access token the session row is keyed on for
// this request. After a silent rotation this is the new token, not the one
// the caller sent, which is what logout must invalidate.
func WithActiveToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, activeTokenKey, token)
}

// ActiveTokenFrom returns the active access token from context and true if set.
func ActiveTokenFrom(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(activeTokenKey).(string)
	return tok, ok
}
