package auth

import "strings"

// Role is the closed set of access levels. Stored lowercase in the users
// table; ParseRole normalises anything else.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var roleRank = map[Role]int{
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// ParseRole maps a stored role string to a Role. Unknown strings collapse to
// RoleUser so a bad row can never grant elevated access.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleModerator:
		return RoleModerator
	default:
		return RoleUser
	}
}

// Valid reports whether s names one of the three roles exactly.
func Valid(s string) bool {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Authorize reports whether actual meets or exceeds required. Every
// role-gated operation in the system goes through this one check.
func Authorize(required, actual Role) bool {
	return roleRank[actual] >= roleRank[required]
}

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   int
	Role Role
}
