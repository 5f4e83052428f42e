package store

import (
	"context"
	"sync"

	"canopy/internal/forest/models"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

// InMemory keeps forests in a map and the id counter under the same lock, so
// increment-and-write is one step.
type InMemory struct {
	mu      sync.RWMutex
	forests map[domain.ForestID]models.Forest
	nextID  domain.ForestID
}

func NewInMemory() *InMemory {
	return &InMemory{forests: make(map[domain.ForestID]models.Forest)}
}

func (s *InMemory) Create(_ context.Context, f *models.Forest) (domain.ForestID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	f.ID = s.nextID
	s.forests[f.ID] = *f
	return f.ID, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ForestID) (*models.Forest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.forests[id]; ok {
		return &f, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Exists(_ context.Context, id domain.ForestID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.forests[id]
	return ok, nil
}
