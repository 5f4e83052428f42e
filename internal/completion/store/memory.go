package store

import (
	"context"
	"sync"

	"canopy/internal/completion/models"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

type key struct {
	milestone domain.MilestoneID
	user      domain.UserID
}

// InMemory keeps completions in a map keyed by the ordered pair.
type InMemory struct {
	mu          sync.RWMutex
	completions map[key]models.Completion
}

func NewInMemory() *InMemory {
	return &InMemory{completions: make(map[key]models.Completion)}
}

func (s *InMemory) Create(_ context.Context, c *models.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{c.MilestoneID, c.UserID}
	if _, ok := s.completions[k]; ok {
		return sentinel.ErrDuplicate
	}
	s.completions[k] = *c
	return nil
}

func (s *InMemory) Find(_ context.Context, milestone domain.MilestoneID, user domain.UserID) (*models.Completion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.completions[key{milestone, user}]; ok {
		return &c, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Exists(_ context.Context, milestone domain.MilestoneID, user domain.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.completions[key{milestone, user}]
	return ok, nil
}
