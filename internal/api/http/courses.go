package http

import (
	"net/http"
	"strings"

	authmw "github.com/bt-lms/dashcore/internal/auth/middleware"
	"github.com/bt-lms/dashcore/internal/lms"
	"github.com/bt-lms/dashcore/internal/scope"
	"github.com/bt-lms/dashcore/internal/snapshot"
)

// GET /courses
// Every role sees its own slice: admins everything, facilitators the
// courses they run, students the courses they are enrolled in.
func ListCoursesHandler(loader *snapshot.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := authmw.ActorFromContext(r.Context())
		ix, ok := loader.Index()
		if !ok {
			httpError(w, snapshot.ErrIncomplete)
			return
		}
		respondJSON(w, http.StatusOK, scope.VisibleCourses(actor, ix))
	}
}

// GET /modules
func ListModulesHandler(loader *snapshot.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := authmw.ActorFromContext(r.Context())
		ix, ok := loader.Index()
		if !ok {
			httpError(w, snapshot.ErrIncomplete)
			return
		}
		respondJSON(w, http.StatusOK, scope.VisibleModules(actor, ix))
	}
}

// GET /lessons
// Quiz- and assignment-typed lesson stubs are filtered out; those render
// through their own surfaces.
func ListLessonsHandler(loader *snapshot.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := authmw.ActorFromContext(r.Context())
		ix, ok := loader.Index()
		if !ok {
			httpError(w, snapshot.ErrIncomplete)
			return
		}
		respondJSON(w, http.StatusOK, scope.VisibleLessons(actor, ix))
	}
}

// GET /overview
// Landing-page counts for the caller's scope.
func OverviewHandler(loader *snapshot.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := authmw.ActorFromContext(r.Context())
		ix, ok := loader.Index()
		if !ok {
			httpError(w, snapshot.ErrIncomplete)
			return
		}
		respondJSON(w, http.StatusOK, scope.BuildOverview(actor, ix))
	}
}

// GET /assessments?kind=quiz|assignment  (no kind: both)
func ListAssessmentsHandler(loader *snapshot.Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := authmw.ActorFromContext(r.Context())
		ix, ok := loader.Index()
		if !ok {
			httpError(w, snapshot.ErrIncomplete)
			return
		}
		var kind lms.AssessmentKind
		if q := strings.TrimSpace(r.URL.Query().Get("kind")); q != "" {
			k, ok := parseKind(q)
			if !ok {
				http.Error(w, "kind must be quiz or assignment", http.StatusBadRequest)
				return
			}
			kind = k
		}
		respondJSON(w, http.StatusOK, scope.VisibleAssessments(actor, ix, kind))
	}
}
