package grading

import (
	"context"
	"errors"
	"fmt"

	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/lms"
)

// ErrNoSubmissionFound means an assignment grade was requested for a
// student with no submission on record. Rejected before any network call:
// a student cannot be graded on work they never turned in.
var ErrNoSubmissionFound = errors.New("no submission found for student")

// GradeWriter is the slice of the backend the grader needs. The quiz
// write is an upsert keyed by (quiz, student); the assignment write is
// keyed by the pre-existing submission's own id.
type GradeWriter interface {
	UpsertQuizGrade(ctx context.Context, quizID, studentID string, score float64, feedback string) error
	GradeSubmission(ctx context.Context, submissionID string, score float64, feedback string) error
}

type Grader struct {
	Backend GradeWriter
}

func NewGrader(be GradeWriter) *Grader { return &Grader{Backend: be} }

// SubmitGrade writes a grade for one (assessment, student) pair.
// submissions is the current raw submission collection for the kind;
// for assignments the authoritative record supplies the submission id.
func (g *Grader) SubmitGrade(ctx context.Context, kind lms.AssessmentKind, assessmentID, studentID string, score float64, feedback string, submissions []lms.Record) error {
	switch kind {
	case lms.AssessmentQuiz:
		if err := g.Backend.UpsertQuizGrade(ctx, assessmentID, studentID, score, feedback); err != nil {
			return fmt.Errorf("upsert quiz grade: %w", err)
		}
		return nil
	case lms.AssessmentAssignment:
		rec := Authoritative(submissionsFor(assessmentID, submissions)[studentID])
		if rec == nil {
			return ErrNoSubmissionFound
		}
		subID, ok := identity.SelfID(rec)
		if !ok {
			return ErrNoSubmissionFound
		}
		if err := g.Backend.GradeSubmission(ctx, subID, score, feedback); err != nil {
			return fmt.Errorf("grade submission %s: %w", subID, err)
		}
		return nil
	}
	return fmt.Errorf("unknown assessment kind %q", kind)
}
