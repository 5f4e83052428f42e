package store

import (
	"context"
	"sync"

	"canopy/internal/identity/models"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

// InMemory keeps the registry in a map. It favors clarity over performance
// and is the default store for standalone mode and unit tests.
type InMemory struct {
	mu    sync.RWMutex
	users map[domain.UserID]models.User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[domain.UserID]models.User)}
}

func (s *InMemory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return sentinel.ErrDuplicate
	}
	s.users[user.ID] = *user
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return &user, nil
	}
	return nil, sentinel.ErrNotFound
}
