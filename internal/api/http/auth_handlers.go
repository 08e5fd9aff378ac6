package http

import (
	"encoding/json"
	"net/http"

	"github.com/bt-lms/dashcore/internal/backend"
)

// POST /auth/login  { "email": "...", "password": "..." }
// Proxies the backend login and primes the session context. The token is
// echoed back so the frontend can authorize subsequent calls.
func LoginHandler(be *backend.HTTPClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}
		actor, err := be.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"token": be.Session.Token(),
			"user": map[string]any{
				"id":   actor.ID,
				"name": actor.DisplayName,
				"role": actor.Role,
			},
		})
	}
}

// POST /auth/register  { "name", "email", "password", "role" }
func RegisterHandler(be *backend.HTTPClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}
		user, err := be.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
		if err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, user)
	}
}

// POST /auth/logout
func LogoutHandler(be *backend.HTTPClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		be.Logout()
		w.WriteHeader(http.StatusNoContent)
	}
}
