// Package store persists completion records keyed by (milestone, user).
package store

import (
	"context"

	"canopy/internal/completion/models"
	"canopy/pkg/domain"
)

type Store interface {
	// Create writes the record, or sentinel.ErrDuplicate when the
	// (milestone, user) key is already taken. The first write wins.
	Create(ctx context.Context, c *models.Completion) error
	// Find returns the record or sentinel.ErrNotFound.
	Find(ctx context.Context, milestone domain.MilestoneID, user domain.UserID) (*models.Completion, error)
	// Exists reports whether a completion is stored for the key.
	Exists(ctx context.Context, milestone domain.MilestoneID, user domain.UserID) (bool, error)
}
