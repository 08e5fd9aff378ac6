package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bt-lms/dashcore/internal/backend"
	"github.com/bt-lms/dashcore/internal/lms"
	"github.com/bt-lms/dashcore/internal/snapshot"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// httpError translates engine sentinels into status codes. Anything
// unrecognized is a 502: the dashboard sits in front of the backend, so
// an unexplained failure is most likely the backend's.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		http.Error(w, "backend rejected credentials", http.StatusUnauthorized)
	case errors.Is(err, snapshot.ErrIncomplete):
		http.Error(w, "snapshot not loaded yet", http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

// parseKind maps the {kind} URL segment. Empty means both kinds.
func parseKind(s string) (lms.AssessmentKind, bool) {
	switch s {
	case "quiz", "test":
		return lms.AssessmentQuiz, true
	case "assignment":
		return lms.AssessmentAssignment, true
	}
	return "", false
}

func submissionCollection(kind lms.AssessmentKind) string {
	if kind == lms.AssessmentQuiz {
		return snapshot.ColQuizAttempts
	}
	return snapshot.ColAssignmentSubmissions
}
