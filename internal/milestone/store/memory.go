package store

import (
	"context"
	"sort"
	"sync"

	"canopy/internal/milestone/models"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
)

type edgeKey struct {
	milestone    domain.MilestoneID
	prerequisite domain.MilestoneID
}

// InMemory keeps milestones, the id counter, and the edge set under one lock.
type InMemory struct {
	mu         sync.RWMutex
	milestones map[domain.MilestoneID]models.Milestone
	edges      map[edgeKey]models.Edge
	nextID     domain.MilestoneID
}

func NewInMemory() *InMemory {
	return &InMemory{
		milestones: make(map[domain.MilestoneID]models.Milestone),
		edges:      make(map[edgeKey]models.Edge),
	}
}

func (s *InMemory) Create(_ context.Context, m *models.Milestone) (domain.MilestoneID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	s.milestones[m.ID] = *m
	return m.ID, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.MilestoneID) (*models.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.milestones[id]; ok {
		return &m, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Exists(_ context.Context, id domain.MilestoneID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.milestones[id]
	return ok, nil
}

func (s *InMemory) UpsertEdge(_ context.Context, e *models.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges[edgeKey{e.MilestoneID, e.PrerequisiteID}] = *e
	return nil
}

func (s *InMemory) EdgesOf(_ context.Context, id domain.MilestoneID) ([]models.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Edge, 0)
	for k, e := range s.edges {
		if k.milestone == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrerequisiteID < out[j].PrerequisiteID })
	return out, nil
}

func (s *InMemory) PrerequisiteIDs(ctx context.Context, id domain.MilestoneID) ([]domain.MilestoneID, error) {
	edges, err := s.EdgesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.MilestoneID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.PrerequisiteID)
	}
	return ids, nil
}
