// Package identity resolves foreign-key values out of heterogeneous
// backend records. The backend encodes the same reference as a nested
// object ({"student":{"id":7}}), a suffixed scalar ("studentId":7) or a
// renamed alias ("learnerId":"7") depending on the endpoint, and this
// package is the single chokepoint where that drift is absorbed.
package identity

import (
	"github.com/bt-lms/dashcore/internal/lms"
)

// Kind names the semantic foreign key being requested.
type Kind string

const (
	KindCourse     Kind = "course"
	KindModule     Kind = "module"
	KindStudent    Kind = "student"
	KindAssessment Kind = "assessment"

	// KindFacilitator is the user-reference flavor carried by course
	// records (facilitatorId / nested facilitator object).
	KindFacilitator Kind = "facilitator"
)

// Candidate field names per kind, in precedence order: nested objects
// first, then the canonical <kind>Id scalar, then known aliases.
var (
	nestedFields = map[Kind][]string{
		KindCourse:      {"course"},
		KindModule:      {"module"},
		KindStudent:     {"student", "learner", "user"},
		KindAssessment:  {"assessment", "quiz", "test", "assignment"},
		KindFacilitator: {"facilitator", "teacher"},
	}
	scalarFields = map[Kind][]string{
		KindCourse:      {"courseId", "courseID", "course_id"},
		KindModule:      {"moduleId", "moduleID", "module_id"},
		KindStudent:     {"studentId", "learnerId", "userId", "student_id"},
		KindAssessment:  {"assessmentId", "quizId", "testId", "assignmentId"},
		KindFacilitator: {"facilitatorId", "teacherId"},
	}
)

// ResolveRef returns the canonical string id of rec's foreign key of the
// given kind. It never panics on malformed input; ok=false means the
// record carries no usable reference and must be treated as
// unreconcilable, never as a joinable empty key.
func ResolveRef(rec lms.Record, kind Kind) (string, bool) {
	if rec == nil {
		return "", false
	}
	for _, name := range nestedFields[kind] {
		if obj, ok := rec[name].(map[string]any); ok {
			if id, ok := lms.CanonicalID(obj["id"]); ok {
				return id, true
			}
		}
	}
	for _, name := range scalarFields[kind] {
		if v, present := rec[name]; present {
			if id, ok := lms.CanonicalID(v); ok {
				return id, true
			}
		}
	}
	return "", false
}

// SelfID returns the record's own id in canonical form.
func SelfID(rec lms.Record) (string, bool) {
	if rec == nil {
		return "", false
	}
	if id, ok := lms.CanonicalID(rec["id"]); ok {
		return id, true
	}
	// some endpoints send _id instead of id
	return lms.CanonicalID(rec["_id"])
}
