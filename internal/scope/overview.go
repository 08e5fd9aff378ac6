package scope

import (
	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/index"
	"github.com/bt-lms/dashcore/internal/lms"
)

// Overview is the landing-page aggregate for one actor: how much of the
// catalog is in their scope right now.
type Overview struct {
	Courses     int `json:"courses"`
	Modules     int `json:"modules"`
	Quizzes     int `json:"quizzes"`
	Assignments int `json:"assignments"`
	// Students counts distinct students enrolled across the in-scope
	// courses. Zero for student actors.
	Students int `json:"students"`
}

// BuildOverview recomputes the aggregate from the current index. Derived
// on every call, like every other view.
func BuildOverview(actor lms.Actor, ix *index.Index) Overview {
	var o Overview
	courses := VisibleCourses(actor, ix)
	o.Courses = len(courses)
	o.Modules = len(VisibleModules(actor, ix))
	for _, a := range VisibleAssessments(actor, ix, "") {
		if a.Kind == lms.AssessmentQuiz {
			o.Quizzes++
		} else {
			o.Assignments++
		}
	}
	if actor.Role == lms.RoleStudent {
		return o
	}

	inScope := map[string]bool{}
	for _, c := range courses {
		if id, ok := identity.SelfID(c); ok {
			inScope[id] = true
		}
	}
	students := map[string]bool{}
	for _, e := range ix.Collections().Enrollments {
		cid, ok := identity.ResolveRef(e, identity.KindCourse)
		if !ok || !inScope[cid] {
			continue
		}
		if sid, ok := identity.ResolveRef(e, identity.KindStudent); ok {
			students[sid] = true
		}
	}
	o.Students = len(students)
	return o
}
