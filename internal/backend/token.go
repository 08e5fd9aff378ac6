package backend

import "context"

type ctxKey int

const ctxKeyCallerToken ctxKey = iota

// WithCallerToken carries the caller's own bearer token through the
// request context so proxied calls go out under the caller's
// credentials instead of the shared service session.
func WithCallerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyCallerToken, token)
}

// CallerToken returns the token installed by WithCallerToken, or "".
func CallerToken(ctx context.Context) string {
	tok, _ := ctx.Value(ctxKeyCallerToken).(string)
	return tok
}
