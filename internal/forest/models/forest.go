// Package models holds the forest registry's records.
package models

import "canopy/pkg/domain"

// Forest is a named collection grouping milestones, for example a subject
// area. Records are immutable; the id comes from a strictly increasing
// counter starting at 1 and is never reused.
type Forest struct {
	ID          domain.ForestID
	Name        string
	Description string
	CreatorID   domain.UserID
	CreatedAt   domain.Height
}
