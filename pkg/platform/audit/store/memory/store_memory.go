package memory

import (
	"context"
	"sync"

	"canopy/pkg/domain"
	"canopy/pkg/platform/audit"
)

// InMemoryStore keeps the trail in an append-only slice with a per-subject
// index for reads. Events are never removed.
type InMemoryStore struct {
	mu        sync.RWMutex
	events    []audit.Event
	bySubject map[domain.UserID][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{bySubject: make(map[domain.UserID][]int)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	s.bySubject[event.SubjectID] = append(s.bySubject[event.SubjectID], len(s.events)-1)
	return nil
}

// ListBySubject returns every event about the given user, in emission order.
func (s *InMemoryStore) ListBySubject(_ context.Context, subject domain.UserID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.bySubject[subject]
	out := make([]audit.Event, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.events[i])
	}
	return out, nil
}

// ListAll returns the full trail in emission order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...), nil
}
