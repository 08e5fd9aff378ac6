package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/bt-lms/dashcore/internal/auth/middleware"
	"github.com/bt-lms/dashcore/internal/grading"
	"github.com/bt-lms/dashcore/internal/lms"
	"github.com/bt-lms/dashcore/internal/scope"
	"github.com/bt-lms/dashcore/internal/snapshot"
)

// GET /assessments/{kind}/{assessmentID}/roster?search=...
// The grading roster: every visible student exactly once, joined with
// their authoritative submission for this assessment.
func RosterHandler(loader *snapshot.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := parseKind(chi.URLParam(r, "kind"))
		if !ok {
			http.Error(w, "kind must be quiz or assignment", http.StatusBadRequest)
			return
		}
		assessmentID := strings.TrimSpace(chi.URLParam(r, "assessmentID"))
		if assessmentID == "" {
			http.Error(w, "assessmentID required", http.StatusBadRequest)
			return
		}
		cols, err := loader.Collections()
		if err != nil {
			httpError(w, err)
			return
		}
		subs := cols.QuizAttempts
		if kind != lms.AssessmentQuiz {
			subs = cols.AssignmentSubmissions
		}
		rows := grading.BuildRoster(cols.Users, assessmentID, kind, subs,
			r.URL.Query().Get("search"))
		respondJSON(w, http.StatusOK, rows)
	}
}

// POST /assessments/{kind}/{assessmentID}/grade
// { "studentId": "...", "score": 85, "feedback": "..." }
// Quizzes upsert by (quiz, student); assignments target the student's
// authoritative submission and fail without touching the backend when
// there is nothing to grade.
func SubmitGradeHandler(loader *snapshot.Loader, grader *grading.Grader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := parseKind(chi.URLParam(r, "kind"))
		if !ok {
			http.Error(w, "kind must be quiz or assignment", http.StatusBadRequest)
			return
		}
		assessmentID := strings.TrimSpace(chi.URLParam(r, "assessmentID"))
		var req struct {
			StudentID string  `json:"studentId"`
			Score     float64 `json:"score"`
			Feedback  string  `json:"feedback"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StudentID == "" {
			http.Error(w, "studentId and score required", http.StatusBadRequest)
			return
		}
		cols, err := loader.Collections()
		if err != nil {
			httpError(w, err)
			return
		}
		subs := cols.QuizAttempts
		if kind != lms.AssessmentQuiz {
			subs = cols.AssignmentSubmissions
		}
		err = grader.SubmitGrade(r.Context(), kind, assessmentID, req.StudentID, req.Score, req.Feedback, subs)
		if errors.Is(err, grading.ErrNoSubmissionFound) {
			http.Error(w, "student has no submission for this assignment", http.StatusConflict)
			return
		}
		if err != nil {
			httpError(w, err)
			return
		}
		// pull the written grade back in so the next roster reflects it
		if _, err := loader.RefreshOne(r.Context(), submissionCollection(kind)); err != nil && !errors.Is(err, snapshot.ErrStale) {
			httpError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "graded"})
	}
}

// GET /submissions/own?kind=quiz|assignment
// Student surface. The backend list endpoints are unscoped, so the
// dashboard narrows to the caller's own records before anything leaves
// the process.
func OwnSubmissionsHandler(loader *snapshot.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := authmw.ActorFromContext(r.Context())
		kind, ok := parseKind(r.URL.Query().Get("kind"))
		if !ok {
			http.Error(w, "kind must be quiz or assignment", http.StatusBadRequest)
			return
		}
		cols, err := loader.Collections()
		if err != nil {
			httpError(w, err)
			return
		}
		subs := cols.QuizAttempts
		if kind != lms.AssessmentQuiz {
			subs = cols.AssignmentSubmissions
		}
		respondJSON(w, http.StatusOK, scope.OwnSubmissions(actor, subs))
	}
}
