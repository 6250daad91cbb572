package model

import "strings"

// Role is a ranked permission level held by a user within one project.
// Comparison is by rank only; capability checks must go through the
// Can* methods so the rules stay in one place.
type Role int

const (
	RoleViewer Role = iota
	RoleMember
	RoleManager
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleOwner:   "OWNER",
	RoleAdmin:   "ADMIN",
	RoleManager: "MANAGER",
	RoleMember:  "MEMBER",
	RoleViewer:  "VIEWER",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "VIEWER"
}

// ParseRole maps a stored role string to a Role. Unknown or empty
// values fall back to VIEWER so a corrupt row can never grant access.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OWNER":
		return RoleOwner
	case "ADMIN":
		return RoleAdmin
	case "MANAGER":
		return RoleManager
	case "MEMBER":
		return RoleMember
	default:
		return RoleViewer
	}
}

// AtLeast reports whether r ranks at or above min in the fixed order
// OWNER > ADMIN > MANAGER > MEMBER > VIEWER.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

func (r Role) CanViewProject() bool {
	return r.AtLeast(RoleViewer)
}

func (r Role) CanEditTasks() bool {
	return r.AtLeast(RoleMember)
}

func (r Role) CanAssignTasks() bool {
	return r.CanEditTasks()
}

func (r Role) CanComment() bool {
	return r.CanEditTasks()
}

func (r Role) CanManageAttachments() bool {
	return r.CanEditTasks()
}

func (r Role) CanModerateComments() bool {
	return r.AtLeast(RoleManager)
}

func (r Role) CanManageMembers() bool {
	return r.AtLeast(RoleManager)
}

func (r Role) CanDeleteProject() bool {
	return r.AtLeast(RoleManager)
}
