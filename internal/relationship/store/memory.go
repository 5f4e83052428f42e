package store

import (
	"context"
	"sync"

	"canopy/internal/relationship/models"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

type pairKey struct {
	guardian domain.UserID
	child    domain.UserID
}

// InMemory keys links by the ordered (guardian, child) pair.
type InMemory struct {
	mu    sync.RWMutex
	links map[pairKey]models.Relationship
}

func NewInMemory() *InMemory {
	return &InMemory{links: make(map[pairKey]models.Relationship)}
}

func (s *InMemory) Create(_ context.Context, rel *models.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{guardian: rel.GuardianID, child: rel.ChildID}
	if _, ok := s.links[key]; ok {
		return sentinel.ErrDuplicate
	}
	s.links[key] = *rel
	return nil
}

func (s *InMemory) Find(_ context.Context, guardian, child domain.UserID) (*models.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rel, ok := s.links[pairKey{guardian: guardian, child: child}]; ok {
		return &rel, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Exists(_ context.Context, guardian, child domain.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.links[pairKey{guardian: guardian, child: child}]
	return ok, nil
}
