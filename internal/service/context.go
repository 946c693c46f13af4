package service

import "context"

type sessionTokenKey struct{}

// WithSessionToken attaches the caller's raw session token to ctx. Transport
// adapters call it once per request; the services read it back.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey{}, token)
}

func SessionTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenKey{}).(string)
	return token
}
