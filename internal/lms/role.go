package lms

import "strings"

type Role string

const (
	RoleStudent     Role = "student"
	RoleFacilitator Role = "facilitator"
	RoleAdmin       Role = "admin"
)

// Actor is the authenticated user on whose behalf the dashboard acts.
type Actor struct {
	ID          string
	DisplayName string
	Role        Role
}

// NormalizeRole maps the role strings seen on the wire onto the three
// canonical roles. The backend sends "ROLE_STUDENT", "STUDENT", "student"
// or even "learner" depending on which endpoint produced the user.
func NormalizeRole(raw string) (Role, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "role_")
	switch s {
	case "student", "learner":
		return RoleStudent, true
	case "facilitator", "teacher":
		return RoleFacilitator, true
	case "admin":
		return RoleAdmin, true
	}
	return "", false
}
