package auth

import (
	"context"

	"github.com/bt-lms/dashcore/internal/lms"
)

type ctxKey string

const ctxKeyActor ctxKey = "actor"

func WithActor(ctx context.Context, a lms.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

func ActorFromContext(ctx context.Context) (lms.Actor, bool) {
	if v := ctx.Value(ctxKeyActor); v != nil {
		if a, ok := v.(lms.Actor); ok {
			return a, true
		}
	}
	return lms.Actor{}, false
}
