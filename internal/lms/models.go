package lms

// Record is one raw object as decoded from a backend list payload. The
// backend emits the same foreign key in several shapes (nested object,
// suffixed scalar, renamed alias), so records are kept untouched and
// normalized only at read time.
type Record map[string]any

// String returns a string-valued field, or "" if absent or not a string.
func (r Record) String(key string) string {
	if r == nil {
		return ""
	}
	s, _ := r[key].(string)
	return s
}

// Bool returns a bool-valued field; absent fields default to def.
func (r Record) Bool(key string, def bool) bool {
	if r == nil {
		return def
	}
	if b, ok := r[key].(bool); ok {
		return b
	}
	return def
}

// Float returns a numeric field. JSON numbers decode as float64; ints and
// numeric strings are tolerated because the backend is inconsistent.
func (r Record) Float(key string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	return toFloat(r[key])
}

type AssessmentKind string

const (
	AssessmentQuiz       AssessmentKind = "quiz"
	AssessmentAssignment AssessmentKind = "assignment"
)

// Assessment tags a raw record with which of the two gradable kinds it is.
type Assessment struct {
	Kind AssessmentKind
	Rec  Record
}

// Submission tags a raw quiz-attempt or assignment-submission record.
type Submission struct {
	Kind AssessmentKind
	Rec  Record
}

// Collections is one consistent snapshot of everything the dashboard
// fetches. Slices may be empty (a failed fetch degrades to empty) but a
// populated Collections value always represents a complete fetch pass.
type Collections struct {
	Users                 []Record
	Courses               []Record
	Modules               []Record
	Lessons               []Record
	Tests                 []Record
	Assignments           []Record
	Enrollments           []Record
	QuizAttempts          []Record
	AssignmentSubmissions []Record
}

// Question is one item of a quiz's question set. Options stay raw because
// the backend sends either plain strings or {id, text} objects.
type Question struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Type   string  `json:"type"` // MULTIPLE_CHOICE | TRUE_FALSE | SHORT_ANSWER
	Points float64 `json:"points"`
	Options []any  `json:"options,omitempty"`
}

// ScoreResult is what the backend returns for a submitted attempt. The
// server is the sole grader; this value is never computed client-side.
type ScoreResult struct {
	Score      float64 `json:"score"`
	TotalMarks float64 `json:"totalMarks"`
}
