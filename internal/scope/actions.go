package scope

import "github.com/bt-lms/dashcore/internal/lms"

// Dashboard actions per role. This is routing hygiene for the local
// facade, not authorization: the backend still rejects anything the token
// doesn't actually permit.
var roleActions = map[lms.Role][]string{
	lms.RoleStudent: {
		"roster:view-own",
		"session:take",
		"message:send",
	},
	lms.RoleFacilitator: {
		"roster:view",
		"grade:write",
		"message:send",
	},
	lms.RoleAdmin: {
		"*",
	},
}

// Allows reports whether the role may perform the action.
func Allows(role lms.Role, action string) bool {
	for _, a := range roleActions[role] {
		if a == "*" || a == action {
			return true
		}
	}
	return false
}
