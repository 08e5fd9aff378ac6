package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/bt-lms/dashcore/internal/snapshot"
)

// AdminBasicAuth guards the operational endpoints with the configured
// admin credentials. Separate from the bearer flow on purpose: these
// endpoints must work when the backend (and therefore token auth) is
// down.
func AdminBasicAuth(user, passHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 ||
				bcrypt.CompareHashAndPassword([]byte(passHash), []byte(p)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="dashcore admin"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// POST /refresh
// Forces a full snapshot refetch. Superseded results are not an error
// for the caller; someone else simply refreshed first.
func RefreshHandler(loader *snapshot.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ix, err := loader.Refresh(r.Context())
		if err != nil && !errors.Is(err, snapshot.ErrStale) {
			httpError(w, err)
			return
		}
		var version uint64
		if ix != nil {
			version = ix.Version()
		}
		respondJSON(w, http.StatusOK, map[string]any{"version": version})
	}
}

// POST /admin/cache/purge
func PurgeCacheHandler(cache snapshot.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cache == nil {
			http.Error(w, "no cache configured", http.StatusNotFound)
			return
		}
		if err := cache.Purge(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "purged"})
	}
}
