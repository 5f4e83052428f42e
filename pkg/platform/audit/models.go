// Package audit captures the verification trail: who performed each mutation,
// on whose behalf, and at which ledger height. Events are append-only and are
// emitted after a mutation commits; they never influence the outcome of the
// operation that produced them.
package audit

import (
	"time"

	"canopy/pkg/domain"
)

// Action names a committed mutation.
type Action string

const (
	ActionUserRegistered      Action = "user_registered"
	ActionRelationshipCreated Action = "relationship_created"
	ActionForestCreated       Action = "forest_created"
	ActionMilestoneCreated    Action = "milestone_created"
	ActionPrerequisiteAdded   Action = "prerequisite_added"
	ActionMilestoneCompleted  Action = "milestone_completed"
)

// Event is emitted from domain services to record a committed mutation. Keep
// it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action    Action
	Timestamp time.Time
	Height    domain.Height
	// ActorID is the caller that performed the mutation. For completions this
	// is the verifier.
	ActorID domain.UserID
	// SubjectID is the user the record is about. Equals ActorID except when a
	// guardian verifies a completion on behalf of a child.
	SubjectID   domain.UserID
	ForestID    domain.ForestID
	MilestoneID domain.MilestoneID
	Detail      string
	RequestID   string
}
