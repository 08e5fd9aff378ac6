package index

import (
	"testing"

	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/lms"
)

func snapshot() lms.Collections {
	return lms.Collections{
		Courses: []lms.Record{
			{"id": "c1", "title": "Algebra", "facilitatorId": "f1"},
			{"id": float64(2), "title": "Biology"},
		},
		Modules: []lms.Record{
			{"id": "m1", "courseId": "c1"},
			{"id": "m2", "courseId": float64(2)}, // numeric course ref
			{"id": "m3", "courseId": "ghost"},    // dangling
		},
		Tests: []lms.Record{
			{"id": "t1", "moduleId": "m1", "courseId": "c1", "totalMarks": float64(10)},
		},
		Assignments: []lms.Record{
			{"id": "a1", "moduleId": "m1", "courseId": "c1"},
			{"id": "a2"}, // no refs at all
		},
		QuizAttempts: []lms.Record{
			{"id": "at1", "quizId": "t1", "studentId": "s1", "score": float64(8)},
		},
		AssignmentSubmissions: []lms.Record{
			{"id": "sub1", "assignment": map[string]any{"id": "a1"}, "student": map[string]any{"id": "s1"}},
		},
		Users: []lms.Record{
			{"id": "s1", "role": "STUDENT"},
		},
		Enrollments: []lms.Record{
			{"id": "e1", "studentId": "s1", "course": map[string]any{"id": float64(2)}},
		},
	}
}

func TestBuildLookups(t *testing.T) {
	ix := Build(snapshot())

	if _, ok := ix.ByID(identity.KindCourse, "c1"); !ok {
		t.Fatal("course c1 not indexed")
	}
	if _, ok := ix.ByID(identity.KindCourse, "2"); !ok {
		t.Fatal("numeric course id not indexed under canonical string")
	}
	if got := len(ix.ModulesOf("c1")); got != 1 {
		t.Fatalf("ModulesOf(c1) = %d modules, want 1", got)
	}
	if got := len(ix.ModulesOf("2")); got != 1 {
		t.Fatalf("ModulesOf(2) = %d modules, want 1", got)
	}
	as := ix.AssessmentsOfModule("m1")
	if len(as) != 2 {
		t.Fatalf("AssessmentsOfModule(m1) = %d, want test+assignment", len(as))
	}
	kinds := map[lms.AssessmentKind]bool{}
	for _, a := range as {
		kinds[a.Kind] = true
	}
	if !kinds[lms.AssessmentQuiz] || !kinds[lms.AssessmentAssignment] {
		t.Fatalf("assessment kinds = %v", kinds)
	}
	if got := len(ix.SubmissionsOf("t1")); got != 1 {
		t.Fatalf("SubmissionsOf(t1) = %d, want 1", got)
	}
	if got := len(ix.SubmissionsOf("a1")); got != 1 {
		t.Fatalf("SubmissionsOf(a1) = %d, want 1 (nested assignment ref)", got)
	}
	if got := len(ix.EnrollmentsOf("s1")); got != 1 {
		t.Fatalf("EnrollmentsOf(s1) = %d, want 1", got)
	}
}

func TestBuildToleratesDanglingRefs(t *testing.T) {
	ix := Build(snapshot())

	// m3 references a course that doesn't exist: still addressable by id,
	// just parentless.
	if _, ok := ix.ByID(identity.KindModule, "m3"); !ok {
		t.Fatal("dangling module should still be indexed by id")
	}
	if got := len(ix.ModulesOf("ghost")); got != 1 {
		// The child lives under the id it claims; lookups from real
		// courses never see it.
		t.Fatalf("ModulesOf(ghost) = %d", got)
	}
	// a2 has no refs: indexed by id, absent from all parent lists.
	if _, ok := ix.ByID(identity.KindAssessment, "a2"); !ok {
		t.Fatal("ref-less assignment should still be indexed by id")
	}
	for mid := range map[string]bool{"m1": true, "m2": true, "m3": true} {
		for _, a := range ix.AssessmentsOfModule(mid) {
			if id, _ := identity.SelfID(a.Rec); id == "a2" {
				t.Fatal("ref-less assignment appeared under a module")
			}
		}
	}
}

func TestBuildEmptySnapshot(t *testing.T) {
	ix := Build(lms.Collections{})
	if _, ok := ix.ByID(identity.KindCourse, "c1"); ok {
		t.Fatal("empty index returned a record")
	}
	if ix.ModulesOf("c1") != nil {
		t.Fatal("empty index returned modules")
	}
}

func TestVersionBumpsPerBuild(t *testing.T) {
	a := Build(lms.Collections{})
	b := Build(lms.Collections{})
	if b.Version() <= a.Version() {
		t.Fatalf("versions not monotonic: %d then %d", a.Version(), b.Version())
	}
}
