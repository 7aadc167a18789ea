package rbac

import "strings"

type Role string
type Action string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleOfficer Role = "Officer"
)

const (
	ActionRead            Action = "read"
	ActionEdit            Action = "edit"
	ActionPropose         Action = "propose"
	ActionManageCompanies Action = "manage_companies"
	ActionReview          Action = "review"
	ActionExport          Action = "export"
	ActionManageUsers     Action = "manage_users"
)

// Roles lists every valid role in descending privilege order.
var Roles = []Role{RoleAdmin, RoleManager, RoleOfficer}

// Can reports whether role holds the privilege for action. Edit is the
// direct-write privilege; roles without it route updates through review.
func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleManager:
		return action != ActionManageUsers
	case RoleOfficer:
		return action == ActionRead || action == ActionPropose
	default:
		return false
	}
}

// Normalize maps a stored role name onto a Role, ignoring case. Unknown
// names return the empty Role, which holds no privileges.
func Normalize(role string) Role {
	for _, candidate := range Roles {
		if strings.EqualFold(strings.TrimSpace(role), string(candidate)) {
			return candidate
		}
	}
	return ""
}

func Valid(role string) bool {
	for _, candidate := range Roles {
		if role == string(candidate) {
			return true
		}
	}
	return false
}
