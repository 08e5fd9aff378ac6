package auth

import (
	"net/http"
	"strings"

	"github.com/bt-lms/dashcore/internal/backend"
)

// BearerMiddleware derives the acting user from the Authorization header.
// The token belongs to the BT backend; it is verified there on every
// proxied call, so locally we only read its claims for identity.
func BearerMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(h, "Bearer ")
			actor, err := backend.ActorFromToken(raw)
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			// keep the raw token around so proxied backend calls carry the
			// caller's credentials, not whoever logged in last
			ctx := backend.WithCallerToken(WithActor(r.Context(), actor), raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
