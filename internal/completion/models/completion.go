// Package models holds the completion ledger's record type.
package models

import "canopy/pkg/domain"

// Completion is the terminal proof that a user finished a milestone, keyed
// by the (milestone, user) pair. Written at most once per key and never
// removed or overwritten; CompletedAt is the ledger height at which the
// record committed.
type Completion struct {
	MilestoneID domain.MilestoneID
	UserID      domain.UserID
	VerifierID  domain.UserID
	Evidence    domain.OptionalEvidence
	CompletedAt domain.Height
}
