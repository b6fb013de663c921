package port

import "context"

type tokenKey struct{}

// ContextWithToken attaches the raw session token of the caller to ctx so
// that remote adapters can act on its behalf
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the session token attached to ctx, or ""
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
