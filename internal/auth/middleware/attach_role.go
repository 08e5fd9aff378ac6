// internal/auth/middleware/attach_role.go
package auth

import (
	"net/http"

	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/index"
	"github.com/bt-lms/dashcore/internal/lms"
	"github.com/bt-lms/dashcore/internal/scope"
)

// Snapshot is the slice of the snapshot loader this middleware needs.
type Snapshot interface {
	Index() (*index.Index, bool)
}

// AttachRoleFromSnapshot overrides the claim role with the user record's
// role when the roster has the user. The record wins: tokens drift
// (ROLE_ prefixes, learner/teacher aliases, stale claims) while the
// roster is refreshed continuously. Without a snapshot yet, the claim
// role stands.
func AttachRoleFromSnapshot(snap Snapshot) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, ok := ActorFromContext(ctx)
			if !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			if ix, ready := snap.Index(); ready {
				if rec, found := ix.ByID(identity.KindStudent, actor.ID); found {
					if role, ok := lms.NormalizeRole(rec.String("role")); ok {
						actor.Role = role
					}
					if name := rec.String("name"); name != "" {
						actor.DisplayName = name
					}
					ctx = WithActor(ctx, actor)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require gates a route on one action for the actor's role.
func Require(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || !scope.Allows(actor.Role, action) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
