// Package scope derives the slice of the snapshot visible to one actor,
// by walking Course -> Module -> Assessment edges through the index. Pure
// functions of their inputs: every index rebuild recomputes scope from
// scratch.
package scope

import (
	"strings"

	"github.com/bt-lms/dashcore/internal/identity"
	"github.com/bt-lms/dashcore/internal/index"
	"github.com/bt-lms/dashcore/internal/lms"
)

// Content-type tags that mark a study material as an assessment rather
// than a plain lesson.
const (
	contentQuiz       = "QUIZ"
	contentAssignment = "ASSIGNMENT"
)

// VisibleCourses returns the courses in scope for the actor. Facilitators
// see courses they own; students see courses they're enrolled in; admins
// see everything.
func VisibleCourses(actor lms.Actor, ix *index.Index) []lms.Record {
	all := ix.Collections().Courses
	switch actor.Role {
	case lms.RoleAdmin:
		return all
	case lms.RoleFacilitator:
		out := make([]lms.Record, 0, len(all))
		for _, c := range all {
			if fid, ok := identity.ResolveRef(c, identity.KindFacilitator); ok && fid == actor.ID {
				out = append(out, c)
			}
		}
		return out
	case lms.RoleStudent:
		enrolled := enrolledCourseIDs(actor, ix)
		out := make([]lms.Record, 0, len(all))
		for _, c := range all {
			if id, ok := identity.SelfID(c); ok && enrolled[id] {
				out = append(out, c)
			}
		}
		return out
	}
	return nil
}

// VisibleModules returns the modules whose course is in scope. A module
// reachable only through a dangling course reference never appears.
func VisibleModules(actor lms.Actor, ix *index.Index) []lms.Record {
	var out []lms.Record
	for _, c := range VisibleCourses(actor, ix) {
		cid, ok := identity.SelfID(c)
		if !ok {
			continue
		}
		out = append(out, ix.ModulesOf(cid)...)
	}
	return out
}

// VisibleAssessments returns tests and assignments under the actor's
// in-scope courses, optionally restricted to one kind ("" means both).
func VisibleAssessments(actor lms.Actor, ix *index.Index, kind lms.AssessmentKind) []lms.Assessment {
	var out []lms.Assessment
	seen := map[string]bool{}
	for _, c := range VisibleCourses(actor, ix) {
		cid, ok := identity.SelfID(c)
		if !ok {
			continue
		}
		for _, a := range ix.AssessmentsOfCourse(cid) {
			if kind != "" && a.Kind != kind {
				continue
			}
			id, ok := identity.SelfID(a.Rec)
			if !ok {
				continue
			}
			key := string(a.Kind) + "|" + id
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a)
		}
	}
	return out
}

// VisibleLessons returns the plain study materials under in-scope
// modules. Items tagged QUIZ or ASSIGNMENT are assessments and must never
// show up in the lesson list.
func VisibleLessons(actor lms.Actor, ix *index.Index) []lms.Record {
	moduleIDs := map[string]bool{}
	for _, m := range VisibleModules(actor, ix) {
		if id, ok := identity.SelfID(m); ok {
			moduleIDs[id] = true
		}
	}
	var out []lms.Record
	for _, mat := range ix.Collections().Lessons {
		mid, ok := identity.ResolveRef(mat, identity.KindModule)
		if !ok || !moduleIDs[mid] {
			continue
		}
		ct := strings.ToUpper(mat.String("contentType"))
		if ct == "" {
			ct = strings.ToUpper(mat.String("type"))
		}
		if ct == contentQuiz || ct == contentAssignment {
			continue
		}
		out = append(out, mat)
	}
	return out
}

// OwnSubmissions narrows a submission slice to records belonging to the
// student, tolerating the studentId/learnerId alias drift. Unresolvable
// records are dropped rather than matched against everyone.
func OwnSubmissions(actor lms.Actor, subs []lms.Record) []lms.Record {
	out := make([]lms.Record, 0, len(subs))
	for _, s := range subs {
		if sid, ok := identity.ResolveRef(s, identity.KindStudent); ok && sid == actor.ID {
			out = append(out, s)
		}
	}
	return out
}

func enrolledCourseIDs(actor lms.Actor, ix *index.Index) map[string]bool {
	ids := map[string]bool{}
	for _, e := range ix.EnrollmentsOf(actor.ID) {
		if cid, ok := identity.ResolveRef(e, identity.KindCourse); ok {
			ids[cid] = true
		}
	}
	return ids
}
