package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/bt-lms/dashcore/internal/auth/middleware"
	"github.com/bt-lms/dashcore/internal/backend"
	"github.com/bt-lms/dashcore/internal/grading"
	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/lms"
	"github.com/bt-lms/dashcore/internal/scope"
	"github.com/bt-lms/dashcore/internal/session"
	"github.com/bt-lms/dashcore/internal/snapshot"
)

type sessionView struct {
	ID        string            `json:"id,omitempty"`
	State     session.State     `json:"state"`
	Questions []lms.Question    `json:"questions,omitempty"`
	Answers   map[string]string `json:"answers,omitempty"`
	Result    *lms.ScoreResult  `json:"result,omitempty"`
}

func viewOf(id string, s *session.Session) sessionView {
	v := sessionView{
		ID:        id,
		State:     s.State(),
		Questions: s.Questions(),
		Answers:   s.Answers(),
	}
	if res, ok := s.Result(); ok {
		v.Result = &res
	}
	return v
}

// POST /sessions  { "assessmentId": "..." }
// Opens a quiz session for the caller. A learner with a finished attempt
// gets a completed session showing the prior score instead of a second
// try.
func StartSessionHandler(loader *snapshot.Loader, be backend.Client, mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := authmw.ActorFromContext(r.Context())
		var req struct {
			AssessmentID string `json:"assessmentId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.AssessmentID) == "" {
			http.Error(w, "assessmentId required", http.StatusBadRequest)
			return
		}

		if cols, err := loader.Collections(); err == nil {
			own := scope.OwnSubmissions(actor, cols.QuizAttempts)
			var mine []lms.Record
			for _, s := range own {
				if aid, ok := identity.ResolveRef(s, identity.KindAssessment); ok && aid == req.AssessmentID {
					mine = append(mine, s)
				}
			}
			if prior := grading.Authoritative(mine); prior != nil {
				res := lms.ScoreResult{}
				if sc, ok := prior.Float("score"); ok {
					res.Score = sc
				}
				if tm, ok := prior.Float("totalMarks"); ok {
					res.TotalMarks = tm
				}
				// nothing left to answer or submit, so the view is not
				// registered; a new start request rebuilds it
				s := session.NewCompleted(req.AssessmentID, actor.ID, res)
				respondJSON(w, http.StatusOK, viewOf("", s))
				return
			}
		}

		s := session.New(be, req.AssessmentID, actor.ID)
		if err := s.Start(r.Context()); err != nil {
			httpError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, viewOf(mgr.Add(s), s))
	}
}

// GET /sessions/{sessionID}
func GetSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		s, ok := mgr.Get(id)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, viewOf(id, s))
	}
}

// POST /sessions/{sessionID}/answers  { "questionId": "...", "value": "..." }
func AnswerHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		s, ok := mgr.Get(id)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		var req struct {
			QuestionID string `json:"questionId"`
			Value      string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionID == "" {
			http.Error(w, "questionId required", http.StatusBadRequest)
			return
		}
		if err := s.Answer(req.QuestionID, req.Value); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		respondJSON(w, http.StatusOK, viewOf(id, s))
	}
}

// POST /sessions/{sessionID}/submit
// Single-shot. A transport failure leaves the session in progress with
// answers intact so the learner can retry; a duplicate submit never
// reaches the backend.
func SubmitSessionHandler(loader *snapshot.Loader, mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		s, ok := mgr.Get(id)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		res, err := s.Submit(r.Context())
		switch {
		case errors.Is(err, session.ErrAlreadySubmitted):
			http.Error(w, "attempt was already submitted", http.StatusConflict)
			return
		case errors.Is(err, session.ErrSubmitFailed):
			// still in progress; the client may retry
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if _, err := loader.RefreshOne(r.Context(), snapshot.ColQuizAttempts); err != nil && !errors.Is(err, snapshot.ErrStale) && !errors.Is(err, snapshot.ErrIncomplete) {
			httpError(w, err)
			return
		}
		// completed sessions do not linger; a late duplicate submit misses
		mgr.Remove(id)
		respondJSON(w, http.StatusOK, map[string]any{
			"score":      res.Score,
			"totalMarks": res.TotalMarks,
		})
	}
}

// POST /sessions/{sessionID}/abort
func AbortSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		s, ok := mgr.Get(id)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		s.Abort()
		mgr.Remove(id)
		w.WriteHeader(http.StatusNoContent)
	}
}
