// Package models holds the relationship registry's records.
package models

import "canopy/pkg/domain"

// Relationship is a directed guardian→child authorization link. It is stored
// once per ordered pair and never mirrored: authorization queries always run
// guardian-to-child. Links cannot be revoked.
type Relationship struct {
	GuardianID domain.UserID
	ChildID    domain.UserID
	Kind       domain.RelationshipKind
	CreatedAt  domain.Height
}
