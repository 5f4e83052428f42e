// Package models holds the identity registry's records.
package models

import "canopy/pkg/domain"

// User is a registered principal. Records are written once at registration
// and never mutated or deleted; in particular the role is fixed for the
// lifetime of the identity.
type User struct {
	ID           domain.UserID
	Name         string
	Role         domain.Role
	RegisteredAt domain.Height
}

// IsChild reports whether this user can be the target of a guardian
// relationship or call self-complete.
func (u *User) IsChild() bool {
	return u.Role == domain.RoleChild
}
