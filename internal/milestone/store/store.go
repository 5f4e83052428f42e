// Package store persists the milestone graph: nodes, the milestone id
// counter, and the prerequisite edge set.
package store

import (
	"context"

	"canopy/internal/milestone/models"
	"canopy/pkg/domain"
)

type Store interface {
	// Create allocates the next milestone id, assigns it to m, and writes the
	// record in the same atomic step.
	Create(ctx context.Context, m *models.Milestone) (domain.MilestoneID, error)
	// FindByID returns the record or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id domain.MilestoneID) (*models.Milestone, error)
	// Exists reports whether the milestone id is allocated.
	Exists(ctx context.Context, id domain.MilestoneID) (bool, error)

	// UpsertEdge writes the directed requirement edge. Re-writing an existing
	// (milestone, prerequisite) pair replaces its AddedAt and is not an error.
	UpsertEdge(ctx context.Context, e *models.Edge) error
	// EdgesOf returns every inbound requirement edge of the milestone, in
	// ascending prerequisite id order. Empty slice when there are none.
	EdgesOf(ctx context.Context, id domain.MilestoneID) ([]models.Edge, error)
	// PrerequisiteIDs returns just the prerequisite ids of EdgesOf.
	PrerequisiteIDs(ctx context.Context, id domain.MilestoneID) ([]domain.MilestoneID, error)
}
