package grading

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bt-lms/dashcore/internal/lms"
)

func students(ids ...string) []lms.Record {
	out := make([]lms.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, lms.Record{"id": id, "role": "STUDENT", "name": "Student " + id, "email": id + "@school.test"})
	}
	return out
}

func TestBuildRosterExampleScenario(t *testing.T) {
	// Course C1, Module M1, Assignment A1. S1 submitted (ungraded), S2
	// did not.
	stus := students("S1", "S2")
	subs := []lms.Record{
		{"id": "sub1", "assignmentId": "A1", "studentId": "S1", "fileUrl": "f1"},
	}

	rows := BuildRoster(stus, "A1", lms.AssessmentAssignment, subs, "")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if !rows[0].HasSubmitted || rows[0].Score != nil {
		t.Fatalf("S1 row = %+v, want submitted with no score", rows[0])
	}
	if rows[1].HasSubmitted || rows[1].Score != nil {
		t.Fatalf("S2 row = %+v, want not submitted", rows[1])
	}

	// After grading S1 with 85, a fresh snapshot shows the score.
	subs[0]["grade"] = float64(85)
	rows = BuildRoster(stus, "A1", lms.AssessmentAssignment, subs, "")
	if rows[0].Score == nil || *rows[0].Score != 85 {
		t.Fatalf("S1 score = %v, want 85", rows[0].Score)
	}
}

func TestBuildRosterNoDuplicateNoDrop(t *testing.T) {
	stus := students("S1", "S2", "S3")
	subs := []lms.Record{
		{"id": "1", "quizId": "Q1", "studentId": "S1", "score": float64(5)},
		{"id": "2", "quizId": "Q1", "learnerId": "S3", "score": float64(9)}, // alias ref
		{"id": "3", "quizId": "OTHER", "studentId": "S2", "score": float64(4)},
		{"id": "4", "quizId": "Q1"}, // no student ref: dropped, matches nobody
	}

	rows := BuildRoster(stus, "Q1", lms.AssessmentQuiz, subs, "")
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want exactly one per student", len(rows))
	}
	submitted := 0
	for _, r := range rows {
		if r.HasSubmitted {
			submitted++
		}
	}
	if submitted != 2 {
		t.Fatalf("submitted count = %d, want 2", submitted)
	}
	if rows[1].HasSubmitted {
		t.Fatal("S2's unrelated submission leaked into Q1")
	}
}

func TestBuildRosterStringNumberIDDrift(t *testing.T) {
	stus := []lms.Record{{"id": float64(7), "role": "student", "name": "Seven"}}
	subs := []lms.Record{{"id": "s", "quizId": "Q1", "studentId": "7", "score": float64(3)}}

	rows := BuildRoster(stus, "Q1", lms.AssessmentQuiz, subs, "")
	if len(rows) != 1 || !rows[0].HasSubmitted {
		t.Fatalf("numeric student id failed to join string ref: %+v", rows)
	}
}

func TestBuildRosterLatestWins(t *testing.T) {
	stus := students("S1")
	early := lms.Record{"id": "1", "quizId": "Q1", "studentId": "S1", "score": float64(40), "submittedAt": "2024-01-01T10:00:00Z"}
	late := lms.Record{"id": "2", "quizId": "Q1", "studentId": "S1", "score": float64(90), "submittedAt": "2024-02-01T10:00:00Z"}

	for _, subs := range [][]lms.Record{{early, late}, {late, early}} {
		rows := BuildRoster(stus, "Q1", lms.AssessmentQuiz, subs, "")
		if rows[0].Score == nil || *rows[0].Score != 90 {
			t.Fatalf("latest submission did not win: %+v", rows[0])
		}
	}
}

func TestBuildRosterLatestWinsByIDWhenUndated(t *testing.T) {
	stus := students("S1")
	subs := []lms.Record{
		{"id": float64(3), "quizId": "Q1", "studentId": "S1", "score": float64(10)},
		{"id": float64(12), "quizId": "Q1", "studentId": "S1", "score": float64(70)},
	}
	rows := BuildRoster(stus, "Q1", lms.AssessmentQuiz, subs, "")
	if *rows[0].Score != 70 {
		t.Fatalf("highest id did not win: %v", *rows[0].Score)
	}
	// 12 > 3 must compare numerically, not lexicographically.
}

func TestBuildRosterJacksonDateArray(t *testing.T) {
	stus := students("S1")
	subs := []lms.Record{
		{"id": "a", "assignmentId": "A1", "studentId": "S1", "grade": float64(50),
			"submissionDate": []any{float64(2024), float64(1), float64(1), float64(9), float64(0)}},
		{"id": "b", "assignmentId": "A1", "studentId": "S1", "grade": float64(60),
			"submissionDate": []any{float64(2024), float64(3), float64(1), float64(9), float64(0)}},
	}
	rows := BuildRoster(stus, "A1", lms.AssessmentAssignment, subs, "")
	if *rows[0].Score != 60 {
		t.Fatalf("array-dated resubmission lost: %v", *rows[0].Score)
	}
}

func TestBuildRosterDeterministicAndOrdered(t *testing.T) {
	stus := students("S3", "S1", "S2")
	subs := []lms.Record{{"id": "1", "quizId": "Q1", "studentId": "S1", "score": float64(1)}}

	a := BuildRoster(stus, "Q1", lms.AssessmentQuiz, subs, "")
	b := BuildRoster(stus, "Q1", lms.AssessmentQuiz, subs, "")
	if !reflect.DeepEqual(a, b) {
		t.Fatal("BuildRoster not idempotent for identical inputs")
	}
	want := []string{"S3", "S1", "S2"}
	for i, r := range a {
		if r.StudentID != want[i] {
			t.Fatalf("row order %v, want input order %v", a, want)
		}
	}
}

func TestBuildRosterPartialFetchFailure(t *testing.T) {
	// Submissions collection failed upstream and degraded to empty.
	rows := BuildRoster(students("S1", "S2"), "Q1", lms.AssessmentQuiz, nil, "")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for _, r := range rows {
		if r.HasSubmitted {
			t.Fatalf("row %s claims a submission with none fetched", r.StudentID)
		}
	}
}

func TestBuildRosterFiltersRolesAndSearch(t *testing.T) {
	users := []lms.Record{
		{"id": "S1", "role": "ROLE_STUDENT", "name": "Ada Lovelace", "email": "ada@school.test"},
		{"id": "F1", "role": "FACILITATOR", "name": "Grace Hopper"},
		{"id": "S2", "role": "student", "name": "Alan Turing", "email": "alan@school.test"},
	}
	rows := BuildRoster(users, "Q1", lms.AssessmentQuiz, nil, "")
	if len(rows) != 2 {
		t.Fatalf("facilitator leaked into roster: %d rows", len(rows))
	}
	rows = BuildRoster(users, "Q1", lms.AssessmentQuiz, nil, "ADA")
	if len(rows) != 1 || rows[0].StudentID != "S1" {
		t.Fatalf("case-insensitive search broken: %+v", rows)
	}
	rows = BuildRoster(users, "Q1", lms.AssessmentQuiz, nil, "alan@")
	if len(rows) != 1 || rows[0].StudentID != "S2" {
		t.Fatalf("email search broken: %+v", rows)
	}
}

/* ---------------- grade writes ---------------- */

type fakeWriter struct {
	quizCalls, subCalls int
	lastSubID           string
	err                 error
}

func (f *fakeWriter) UpsertQuizGrade(_ context.Context, quizID, studentID string, score float64, feedback string) error {
	f.quizCalls++
	return f.err
}
func (f *fakeWriter) GradeSubmission(_ context.Context, submissionID string, score float64, feedback string) error {
	f.subCalls++
	f.lastSubID = submissionID
	return f.err
}

func TestSubmitGradeQuizUpserts(t *testing.T) {
	w := &fakeWriter{}
	g := NewGrader(w)
	if err := g.SubmitGrade(context.Background(), lms.AssessmentQuiz, "Q1", "S1", 80, "ok", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.quizCalls != 1 || w.subCalls != 0 {
		t.Fatalf("calls = quiz:%d sub:%d", w.quizCalls, w.subCalls)
	}
}

func TestSubmitGradeAssignmentRequiresSubmission(t *testing.T) {
	w := &fakeWriter{}
	g := NewGrader(w)

	err := g.SubmitGrade(context.Background(), lms.AssessmentAssignment, "A1", "S2", 70, "", nil)
	if !errors.Is(err, ErrNoSubmissionFound) {
		t.Fatalf("err = %v, want ErrNoSubmissionFound", err)
	}
	if w.subCalls != 0 {
		t.Fatal("backend was called for an unsubmitted assignment")
	}
}

func TestSubmitGradeAssignmentTargetsAuthoritativeRecord(t *testing.T) {
	w := &fakeWriter{}
	g := NewGrader(w)
	subs := []lms.Record{
		{"id": "old", "assignmentId": "A1", "studentId": "S1", "submittedAt": "2024-01-01T00:00:00Z"},
		{"id": "new", "assignmentId": "A1", "studentId": "S1", "submittedAt": "2024-06-01T00:00:00Z"},
	}
	if err := g.SubmitGrade(context.Background(), lms.AssessmentAssignment, "A1", "S1", 85, "nice", subs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.lastSubID != "new" {
		t.Fatalf("graded submission %q, want the latest one", w.lastSubID)
	}
}
