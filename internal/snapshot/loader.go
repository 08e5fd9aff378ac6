// Package snapshot owns the lifecycle of the dashboard's local data: it
// fans out the bulk collection fetches, degrades failed collections to
// empty, gates index computation on a complete snapshot, and guards
// against stale responses landing after a newer fetch started.
package snapshot

import (
	"context"
	"errors"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bt-lms/dashcore/internal/backend"
	"github.com/bt-lms/dashcore/internal/index"
	"github.com/bt-lms/dashcore/internal/lms"
)

var (
	// ErrIncomplete: the index may only be computed once every required
	// collection has loaded at least once.
	ErrIncomplete = errors.New("snapshot incomplete")
	// ErrStale: a newer fetch superseded this one; its results were
	// discarded.
	ErrStale = errors.New("snapshot fetch superseded")
)

// Collection names, used as cache keys and refresh selectors.
const (
	ColUsers                 = "users"
	ColCourses               = "courses"
	ColModules               = "modules"
	ColLessons               = "lessons"
	ColTests                 = "tests"
	ColAssignments           = "assignments"
	ColEnrollments           = "enrollments"
	ColQuizAttempts          = "quizAttempts"
	ColAssignmentSubmissions = "assignmentSubmissions"
)

var allCollections = []string{
	ColUsers, ColCourses, ColModules, ColLessons, ColTests,
	ColAssignments, ColEnrollments, ColQuizAttempts, ColAssignmentSubmissions,
}

type Loader struct {
	be    backend.Client
	cache Cache // nil disables persistence

	persistMu sync.Mutex

	mu       sync.Mutex
	epoch    uint64
	cols     lms.Collections
	complete bool
	ix       *index.Index
}

func NewLoader(be backend.Client, cache Cache) *Loader {
	return &Loader{be: be, cache: cache}
}

// Refresh fetches all collections concurrently and swaps in a fresh
// index. Each fetch is independently fault-tolerant: a failed collection
// degrades to empty (logged) instead of aborting the pass. Only context
// cancellation fails the whole refresh.
func (l *Loader) Refresh(ctx context.Context) (*index.Index, error) {
	// bulk fetches are service calls; they never ride a caller's token
	ctx = backend.WithCallerToken(ctx, "")
	l.mu.Lock()
	l.epoch++
	myEpoch := l.epoch
	l.mu.Unlock()

	var cols lms.Collections
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(name string, dst *[]lms.Record, fn func(context.Context) ([]lms.Record, error)) {
		g.Go(func() error {
			recs, err := fn(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// deliberate partial-failure policy: empty fallback
				log.Printf("snapshot: %s fetch failed, using empty collection: %v", name, err)
				recs = []lms.Record{}
			}
			*dst = recs
			return nil
		})
	}

	fetch(ColUsers, &cols.Users, l.be.ListUsers)
	fetch(ColCourses, &cols.Courses, l.be.ListCourses)
	fetch(ColModules, &cols.Modules, l.be.ListModules)
	fetch(ColLessons, &cols.Lessons, l.be.ListLessons)
	fetch(ColEnrollments, &cols.Enrollments, l.be.ListEnrollments)
	fetch(ColTests, &cols.Tests, func(ctx context.Context) ([]lms.Record, error) {
		return l.be.ListAssessments(ctx, lms.AssessmentQuiz)
	})
	fetch(ColAssignments, &cols.Assignments, func(ctx context.Context) ([]lms.Record, error) {
		return l.be.ListAssessments(ctx, lms.AssessmentAssignment)
	})
	fetch(ColQuizAttempts, &cols.QuizAttempts, func(ctx context.Context) ([]lms.Record, error) {
		return l.be.ListSubmissions(ctx, lms.AssessmentQuiz)
	})
	fetch(ColAssignmentSubmissions, &cols.AssignmentSubmissions, func(ctx context.Context) ([]lms.Record, error) {
		return l.be.ListSubmissions(ctx, lms.AssessmentAssignment)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.epoch != myEpoch {
		// A newer refresh started while this one was in flight; applying
		// it would clobber newer data with older.
		ix := l.ix
		l.mu.Unlock()
		if ix != nil {
			return ix, ErrStale
		}
		return nil, ErrStale
	}
	l.cols = cols
	l.complete = true
	l.ix = index.Build(cols)
	ix := l.ix
	l.mu.Unlock()

	l.persist(ctx, cols, myEpoch)
	return ix, nil
}

// RefreshOne re-fetches a single collection after a write (grade or
// attempt submit) and rebuilds the index. Gated: until a full Refresh has
// happened, a partial update would join inconsistent data.
func (l *Loader) RefreshOne(ctx context.Context, name string) (*index.Index, error) {
	ctx = backend.WithCallerToken(ctx, "")
	l.mu.Lock()
	if !l.complete {
		l.mu.Unlock()
		return nil, ErrIncomplete
	}
	l.epoch++
	myEpoch := l.epoch
	l.mu.Unlock()

	recs, err := l.fetchOne(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("snapshot: %s refresh failed, keeping previous data: %v", name, err)
		l.mu.Lock()
		ix := l.ix
		l.mu.Unlock()
		return ix, nil
	}

	l.mu.Lock()
	if l.epoch != myEpoch {
		ix := l.ix
		l.mu.Unlock()
		return ix, ErrStale
	}
	setCollection(&l.cols, name, recs)
	l.ix = index.Build(l.cols)
	ix := l.ix
	cols := l.cols
	l.mu.Unlock()

	l.persist(ctx, cols, myEpoch)
	return ix, nil
}

// Index returns the current index, if a complete snapshot exists.
func (l *Loader) Index() (*index.Index, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ix, l.ix != nil
}

// Collections returns the current complete snapshot.
func (l *Loader) Collections() (lms.Collections, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.complete {
		return lms.Collections{}, ErrIncomplete
	}
	return l.cols, nil
}

func (l *Loader) fetchOne(ctx context.Context, name string) ([]lms.Record, error) {
	switch name {
	case ColUsers:
		return l.be.ListUsers(ctx)
	case ColCourses:
		return l.be.ListCourses(ctx)
	case ColModules:
		return l.be.ListModules(ctx)
	case ColLessons:
		return l.be.ListLessons(ctx)
	case ColEnrollments:
		return l.be.ListEnrollments(ctx)
	case ColTests:
		return l.be.ListAssessments(ctx, lms.AssessmentQuiz)
	case ColAssignments:
		return l.be.ListAssessments(ctx, lms.AssessmentAssignment)
	case ColQuizAttempts:
		return l.be.ListSubmissions(ctx, lms.AssessmentQuiz)
	case ColAssignmentSubmissions:
		return l.be.ListSubmissions(ctx, lms.AssessmentAssignment)
	}
	return nil, errors.New("unknown collection " + name)
}

func setCollection(cols *lms.Collections, name string, recs []lms.Record) {
	switch name {
	case ColUsers:
		cols.Users = recs
	case ColCourses:
		cols.Courses = recs
	case ColModules:
		cols.Modules = recs
	case ColLessons:
		cols.Lessons = recs
	case ColEnrollments:
		cols.Enrollments = recs
	case ColTests:
		cols.Tests = recs
	case ColAssignments:
		cols.Assignments = recs
	case ColQuizAttempts:
		cols.QuizAttempts = recs
	case ColAssignmentSubmissions:
		cols.AssignmentSubmissions = recs
	}
}

func getCollection(cols lms.Collections, name string) []lms.Record {
	switch name {
	case ColUsers:
		return cols.Users
	case ColCourses:
		return cols.Courses
	case ColModules:
		return cols.Modules
	case ColLessons:
		return cols.Lessons
	case ColEnrollments:
		return cols.Enrollments
	case ColTests:
		return cols.Tests
	case ColAssignments:
		return cols.Assignments
	case ColQuizAttempts:
		return cols.QuizAttempts
	case ColAssignmentSubmissions:
		return cols.AssignmentSubmissions
	}
	return nil
}
