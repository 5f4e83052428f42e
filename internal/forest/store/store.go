// Package store persists forests and owns the forest id counter.
package store

import (
	"context"

	"canopy/internal/forest/models"
	"canopy/pkg/domain"
)

type Store interface {
	// Create allocates the next forest id, assigns it to f, and writes the
	// record. Allocation and write happen in the same atomic step so two
	// successful creations can never share an id.
	Create(ctx context.Context, f *models.Forest) (domain.ForestID, error)
	// FindByID returns the record or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id domain.ForestID) (*models.Forest, error)
	// Exists reports whether the forest id is allocated.
	Exists(ctx context.Context, id domain.ForestID) (bool, error)
}
