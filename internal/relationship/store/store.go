// Package store persists guardian→child relationships keyed by the ordered
// pair.
package store

import (
	"context"

	"canopy/internal/relationship/models"
	"canopy/pkg/domain"
)

type Store interface {
	// Create writes a new link. Returns sentinel.ErrDuplicate when the ordered
	// pair already exists.
	Create(ctx context.Context, rel *models.Relationship) error
	// Find returns the link or sentinel.ErrNotFound.
	Find(ctx context.Context, guardian, child domain.UserID) (*models.Relationship, error)
	// Exists reports whether the ordered pair is stored.
	Exists(ctx context.Context, guardian, child domain.UserID) (bool, error)
}
