package scope

import (
	"testing"

	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/index"
	"github.com/bt-lms/dashcore/internal/lms"
)

func buildIndex(t *testing.T) *index.Index {
	t.Helper()
	return index.Build(lms.Collections{
		Courses: []lms.Record{
			{"id": "c1", "facilitatorId": "f1"},
			{"id": "c2", "facilitatorId": "f2"},
			{"id": "c3", "facilitator": map[string]any{"id": "f1"}},
		},
		Modules: []lms.Record{
			{"id": "m1", "courseId": "c1"},
			{"id": "m2", "courseId": "c2"},
			{"id": "m3", "courseId": "missing-course"},
		},
		Tests: []lms.Record{
			{"id": "t1", "moduleId": "m1", "courseId": "c1"},
			{"id": "t2", "moduleId": "m2", "courseId": "c2"},
		},
		Assignments: []lms.Record{
			{"id": "a1", "moduleId": "m1", "courseId": "c1"},
		},
		Lessons: []lms.Record{
			{"id": "l1", "moduleId": "m1", "contentType": "PDF"},
			{"id": "l2", "moduleId": "m1", "contentType": "QUIZ"},
			{"id": "l3", "moduleId": "m1", "contentType": "ASSIGNMENT"},
			{"id": "l4", "moduleId": "m2", "contentType": "VIDEO"},
		},
		Enrollments: []lms.Record{
			{"id": "e1", "studentId": "s1", "courseId": "c2"},
		},
	})
}

func TestFacilitatorScope(t *testing.T) {
	ix := buildIndex(t)
	fac := lms.Actor{ID: "f1", Role: lms.RoleFacilitator}

	courses := VisibleCourses(fac, ix)
	if len(courses) != 2 {
		t.Fatalf("facilitator sees %d courses, want 2 (c1 scalar + c3 nested)", len(courses))
	}
	mods := VisibleModules(fac, ix)
	if len(mods) != 1 {
		t.Fatalf("facilitator sees %d modules, want 1", len(mods))
	}
	if id, _ := identity.SelfID(mods[0]); id != "m1" {
		t.Fatalf("facilitator module = %s, want m1", id)
	}
	as := VisibleAssessments(fac, ix, "")
	if len(as) != 2 {
		t.Fatalf("facilitator sees %d assessments, want t1+a1", len(as))
	}
	quizzes := VisibleAssessments(fac, ix, lms.AssessmentQuiz)
	if len(quizzes) != 1 || quizzes[0].Kind != lms.AssessmentQuiz {
		t.Fatalf("kind filter broken: %v", quizzes)
	}
}

func TestStudentScopeViaEnrollment(t *testing.T) {
	ix := buildIndex(t)
	stu := lms.Actor{ID: "s1", Role: lms.RoleStudent}

	courses := VisibleCourses(stu, ix)
	if len(courses) != 1 {
		t.Fatalf("student sees %d courses, want 1", len(courses))
	}
	if id, _ := identity.SelfID(courses[0]); id != "c2" {
		t.Fatalf("student course = %s, want c2", id)
	}
	// No enrollment collection entry means not enrolled, never an error.
	stranger := lms.Actor{ID: "s9", Role: lms.RoleStudent}
	if got := VisibleCourses(stranger, ix); len(got) != 0 {
		t.Fatalf("unenrolled student sees %d courses", len(got))
	}
}

func TestScopeSoundnessDanglingModule(t *testing.T) {
	ix := buildIndex(t)
	// m3 points at a course nobody owns; it must never leak into any
	// actor's module list.
	for _, actor := range []lms.Actor{
		{ID: "f1", Role: lms.RoleFacilitator},
		{ID: "f2", Role: lms.RoleFacilitator},
		{ID: "s1", Role: lms.RoleStudent},
	} {
		for _, m := range VisibleModules(actor, ix) {
			if id, _ := identity.SelfID(m); id == "m3" {
				t.Fatalf("dangling module m3 visible to %s", actor.ID)
			}
		}
	}
}

func TestLessonListExcludesAssessmentTags(t *testing.T) {
	ix := buildIndex(t)
	fac := lms.Actor{ID: "f1", Role: lms.RoleFacilitator}

	lessons := VisibleLessons(fac, ix)
	if len(lessons) != 1 {
		t.Fatalf("facilitator sees %d lessons, want only l1", len(lessons))
	}
	if id, _ := identity.SelfID(lessons[0]); id != "l1" {
		t.Fatalf("lesson = %s, want l1", id)
	}
}

func TestOwnSubmissions(t *testing.T) {
	subs := []lms.Record{
		{"id": "x1", "studentId": "s1"},
		{"id": "x2", "learnerId": "s1"},
		{"id": "x3", "studentId": "s2"},
		{"id": "x4"}, // unresolvable: dropped, not matched
	}
	got := OwnSubmissions(lms.Actor{ID: "s1", Role: lms.RoleStudent}, subs)
	if len(got) != 2 {
		t.Fatalf("OwnSubmissions = %d records, want 2", len(got))
	}
}

func TestAllows(t *testing.T) {
	if !Allows(lms.RoleFacilitator, "grade:write") {
		t.Fatal("facilitator should grade")
	}
	if Allows(lms.RoleStudent, "grade:write") {
		t.Fatal("student must not grade")
	}
	if !Allows(lms.RoleAdmin, "grade:write") {
		t.Fatal("admin wildcard broken")
	}
}
