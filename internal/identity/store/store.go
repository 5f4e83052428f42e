// Package store persists user records. Implementations speak sentinel errors;
// the service layer translates them into domain codes.
package store

import (
	"context"

	"canopy/internal/identity/models"
	"canopy/pkg/domain"
)

// Store is interface-driven so the registry can run on the in-memory map or
// postgres without rewiring business code.
type Store interface {
	// Create writes a new user record. Returns sentinel.ErrDuplicate when the
	// principal already has a record.
	Create(ctx context.Context, user *models.User) error
	// FindByID returns the record or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
}
