package domain

import dErrors "canopy/pkg/domain-errors"

// Role fixes what a registered user may do. Assigned once at registration and
// never changed.
//
// The numeric values are part of the external contract: callers register with
// an integer role in [1,4].
type Role int

const (
	RoleAdmin    Role = 1
	RoleParent   Role = 2
	RoleEducator Role = 3
	RoleChild    Role = 4
)

// ParseRole validates an externally supplied role number.
//
// Errors: CodeInvalidUserRole when the value falls outside [1,4].
func ParseRole(n int) (Role, error) {
	r := Role(n)
	if !r.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidUserRole, "role must be between 1 and 4")
	}
	return r, nil
}

// IsValid checks the role is one of the four supported values.
func (r Role) IsValid() bool {
	return r >= RoleAdmin && r <= RoleChild
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleParent:
		return "parent"
	case RoleEducator:
		return "educator"
	case RoleChild:
		return "child"
	default:
		return "unknown"
	}
}
