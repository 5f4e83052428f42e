// Package domain holds the typed identifiers and enumerations shared across
// the ledger's registries. Constructing values through the Parse functions at
// trust boundaries enforces the validation invariants; direct conversion
// bypasses them.
package domain

import (
	"strconv"

	dErrors "canopy/pkg/domain-errors"
)

// UserID is the opaque caller principal supplied by the substrate. The ledger
// never inspects its structure; it only requires non-emptiness.
type UserID string

// ParseUserID validates an externally supplied principal.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidParameters, "user id cannot be empty")
	}
	return UserID(s), nil
}

func (u UserID) String() string {
	return string(u)
}

// ForestID is a monotonic counter allocated by the Forest Registry, starting
// at 1 and never reused.
type ForestID uint64

// ParseForestID parses a forest id from a URL or request field. Zero is never
// a valid id.
func ParseForestID(s string) (ForestID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidParameters, "invalid forest id")
	}
	return ForestID(n), nil
}

// MilestoneID is a monotonic counter allocated by the Milestone Graph,
// starting at 1 and never reused.
type MilestoneID uint64

// ParseMilestoneID parses a milestone id from a URL or request field.
func ParseMilestoneID(s string) (MilestoneID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidParameters, "invalid milestone id")
	}
	return MilestoneID(n), nil
}

// Height is the strictly increasing logical clock value the substrate stamps
// on every committed mutation. Records carry the height at which they were
// written; the ledger itself never compares heights beyond ordering.
type Height uint64
