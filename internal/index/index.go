// Package index builds the in-memory lookup structures over one snapshot
// of the backend collections. An Index is immutable once built; a fresh
// fetch produces a fresh Index with a bumped version, never a partial
// mutation of the old one, so cross-references can't go stale mid-render.
package index

import (
	"sync/atomic"

	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/lms"
)

var versionCounter atomic.Uint64

type Index struct {
	version uint64
	cols    lms.Collections

	byID map[identity.Kind]map[string]lms.Record

	modulesByCourse     map[string][]lms.Record
	assessmentsByModule map[string][]lms.Assessment
	assessmentsByCourse map[string][]lms.Assessment
	submissionsByAssess map[string][]lms.Submission
	enrollmentsByStudent map[string][]lms.Record
}

// Build indexes one complete snapshot. Dangling references (an assessment
// pointing at a module that never arrived) are tolerated: the record is
// still addressable by id but simply never appears under a parent.
func Build(cols lms.Collections) *Index {
	ix := &Index{
		version:              versionCounter.Add(1),
		cols:                 cols,
		byID:                 map[identity.Kind]map[string]lms.Record{},
		modulesByCourse:      map[string][]lms.Record{},
		assessmentsByModule:  map[string][]lms.Assessment{},
		assessmentsByCourse:  map[string][]lms.Assessment{},
		submissionsByAssess:  map[string][]lms.Submission{},
		enrollmentsByStudent: map[string][]lms.Record{},
	}

	ix.indexByID(identity.KindCourse, cols.Courses)
	ix.indexByID(identity.KindModule, cols.Modules)
	ix.indexByID(identity.KindStudent, cols.Users)
	ix.indexByID(identity.KindAssessment, cols.Tests)
	ix.indexByID(identity.KindAssessment, cols.Assignments)

	for _, m := range cols.Modules {
		if cid, ok := identity.ResolveRef(m, identity.KindCourse); ok {
			ix.modulesByCourse[cid] = append(ix.modulesByCourse[cid], m)
		}
	}
	ix.indexAssessments(lms.AssessmentQuiz, cols.Tests)
	ix.indexAssessments(lms.AssessmentAssignment, cols.Assignments)
	ix.indexSubmissions(lms.AssessmentQuiz, cols.QuizAttempts)
	ix.indexSubmissions(lms.AssessmentAssignment, cols.AssignmentSubmissions)

	for _, e := range cols.Enrollments {
		if sid, ok := identity.ResolveRef(e, identity.KindStudent); ok {
			ix.enrollmentsByStudent[sid] = append(ix.enrollmentsByStudent[sid], e)
		}
	}
	return ix
}

func (ix *Index) indexByID(kind identity.Kind, recs []lms.Record) {
	m := ix.byID[kind]
	if m == nil {
		m = map[string]lms.Record{}
		ix.byID[kind] = m
	}
	for _, r := range recs {
		if id, ok := identity.SelfID(r); ok {
			m[id] = r
		}
	}
}

func (ix *Index) indexAssessments(kind lms.AssessmentKind, recs []lms.Record) {
	for _, r := range recs {
		a := lms.Assessment{Kind: kind, Rec: r}
		if mid, ok := identity.ResolveRef(r, identity.KindModule); ok {
			ix.assessmentsByModule[mid] = append(ix.assessmentsByModule[mid], a)
		}
		if cid, ok := identity.ResolveRef(r, identity.KindCourse); ok {
			ix.assessmentsByCourse[cid] = append(ix.assessmentsByCourse[cid], a)
		}
	}
}

func (ix *Index) indexSubmissions(kind lms.AssessmentKind, recs []lms.Record) {
	for _, r := range recs {
		if aid, ok := identity.ResolveRef(r, identity.KindAssessment); ok {
			ix.submissionsByAssess[aid] = append(ix.submissionsByAssess[aid], lms.Submission{Kind: kind, Rec: r})
		}
	}
}

// Version identifies this build; consumers recompute derived views when
// the version they last saw no longer matches.
func (ix *Index) Version() uint64 { return ix.version }

// Collections returns the snapshot this index was built from.
func (ix *Index) Collections() lms.Collections { return ix.cols }

// ByID looks a record up by normalized id. O(1).
func (ix *Index) ByID(kind identity.Kind, id string) (lms.Record, bool) {
	if id == "" {
		return nil, false
	}
	r, ok := ix.byID[kind][id]
	return r, ok
}

// ModulesOf returns the modules whose course reference resolves to courseID.
func (ix *Index) ModulesOf(courseID string) []lms.Record {
	return ix.modulesByCourse[courseID]
}

// AssessmentsOfModule returns the tests and assignments under a module.
func (ix *Index) AssessmentsOfModule(moduleID string) []lms.Assessment {
	return ix.assessmentsByModule[moduleID]
}

// AssessmentsOfCourse returns the tests and assignments referencing the
// course directly (the backend stamps both courseId and moduleId).
func (ix *Index) AssessmentsOfCourse(courseID string) []lms.Assessment {
	return ix.assessmentsByCourse[courseID]
}

// SubmissionsOf returns every attempt/submission referencing the assessment.
func (ix *Index) SubmissionsOf(assessmentID string) []lms.Submission {
	return ix.submissionsByAssess[assessmentID]
}

// EnrollmentsOf returns the enrollment records for a student. A student
// with no enrollments gets an empty slice, not an error.
func (ix *Index) EnrollmentsOf(studentID string) []lms.Record {
	return ix.enrollmentsByStudent[studentID]
}
