// Package models holds the milestone graph's records: nodes and the separate
// prerequisite-edge set.
package models

import "canopy/pkg/domain"

// Difficulty bounds for a milestone.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Milestone is a single learning objective node. ParentID nests it under
// another milestone for display only; completion gating lives entirely in the
// prerequisite edges. Records are immutable once created.
type Milestone struct {
	ID          domain.MilestoneID
	Title       string
	Description string
	Category    string
	Difficulty  int
	ForestID    domain.ForestID
	ParentID    domain.OptionalMilestoneID
	CreatorID   domain.UserID
	CreatedAt   domain.Height
}

// Edge is a directed requirement: PrerequisiteID must be completed by a user
// before MilestoneID can be completed by that same user. Keyed by the ordered
// pair; re-adding an existing edge refreshes AddedAt and is not an error.
// Edges are never removed and chains are not checked for cycles.
type Edge struct {
	MilestoneID    domain.MilestoneID
	PrerequisiteID domain.MilestoneID
	AddedAt        domain.Height
}
