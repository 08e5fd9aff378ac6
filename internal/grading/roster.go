// Package grading pairs every student on a roster with their single
// authoritative submission for an assessment, tolerating the backend's
// inconsistent foreign-key shapes and duplicated records.
package grading

import (
	"strconv"
	"strings"

	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/lms"
)

// Row is one line of the grading view: a student plus whatever the
// reconciliation found for them. Built fresh on every call, never cached.
type Row struct {
	Student      lms.Record
	StudentID    string
	HasSubmitted bool
	// Score unifies quiz "score" and assignment "grade". nil means no
	// submission or submitted-but-ungraded.
	Score *float64
	// SubmissionID is the authoritative record's own id when one exists;
	// assignment grade writes need it.
	SubmissionID string
}

// BuildRoster left-joins the student list against the submission
// collection for one assessment. Output order follows the input student
// order; the function is pure, so identical inputs give identical rows.
//
// search, when non-empty, narrows the roster to students whose name or
// email contains it case-insensitively. Only role=student users are
// rostered regardless.
func BuildRoster(students []lms.Record, assessmentID string, kind lms.AssessmentKind, submissions []lms.Record, search string) []Row {
	matching := submissionsFor(assessmentID, submissions)
	needle := strings.ToLower(strings.TrimSpace(search))

	rows := make([]Row, 0, len(students))
	for _, stu := range students {
		role, ok := lms.NormalizeRole(stu.String("role"))
		if !ok || role != lms.RoleStudent {
			continue
		}
		if needle != "" && !studentMatches(stu, needle) {
			continue
		}
		sid, ok := identity.SelfID(stu)
		if !ok {
			// A student we can't identify can't be graded; skip rather
			// than joining on an empty key.
			continue
		}
		row := Row{Student: stu, StudentID: sid}
		if rec := Authoritative(matching[sid]); rec != nil {
			row.HasSubmitted = true
			row.Score = scoreOf(rec, kind)
			row.SubmissionID, _ = identity.SelfID(rec)
		}
		rows = append(rows, row)
	}
	return rows
}

// submissionsFor buckets the submissions matching the assessment by
// normalized student id. Records whose assessment or student reference
// cannot be resolved are dropped: an unresolvable key must never match
// another unresolvable key.
func submissionsFor(assessmentID string, submissions []lms.Record) map[string][]lms.Record {
	out := map[string][]lms.Record{}
	if assessmentID == "" {
		return out
	}
	for _, sub := range submissions {
		aid, ok := identity.ResolveRef(sub, identity.KindAssessment)
		if !ok || aid != assessmentID {
			continue
		}
		sid, ok := identity.ResolveRef(sub, identity.KindStudent)
		if !ok {
			continue
		}
		out[sid] = append(out[sid], sub)
	}
	return out
}

// Authoritative picks the single record that counts for grading when the
// backend returns duplicates (resubmission): latest submittedAt wins,
// and absent timestamps fall back to the highest id.
func Authoritative(candidates []lms.Record) lms.Record {
	var best lms.Record
	for _, c := range candidates {
		if best == nil || newer(c, best) {
			best = c
		}
	}
	return best
}

func newer(a, b lms.Record) bool {
	at, aok := SubmittedAt(a)
	bt, bok := SubmittedAt(b)
	switch {
	case aok && bok && !at.Equal(bt):
		return at.After(bt)
	case aok != bok:
		return aok
	}
	return idGreater(a, b)
}

func idGreater(a, b lms.Record) bool {
	aid, _ := identity.SelfID(a)
	bid, _ := identity.SelfID(b)
	af, errA := strconv.ParseFloat(aid, 64)
	bf, errB := strconv.ParseFloat(bid, 64)
	if errA == nil && errB == nil {
		return af > bf
	}
	return aid > bid
}

func scoreOf(rec lms.Record, kind lms.AssessmentKind) *float64 {
	keys := []string{"score", "grade"}
	if kind == lms.AssessmentAssignment {
		keys = []string{"grade", "score"}
	}
	for _, k := range keys {
		if v, ok := rec.Float(k); ok {
			return &v
		}
	}
	return nil
}

func studentMatches(stu lms.Record, needle string) bool {
	for _, field := range []string{"name", "displayName", "email"} {
		if v := strings.ToLower(stu.String(field)); v != "" && strings.Contains(v, needle) {
			return true
		}
	}
	// some endpoints split the name
	full := strings.ToLower(strings.TrimSpace(stu.String("firstname") + " " + stu.String("surname")))
	return full != "" && strings.Contains(full, needle)
}
