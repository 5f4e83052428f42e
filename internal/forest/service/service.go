// Package service implements the Forest Registry.
package service

import (
	"context"
	"errors"
	"time"

	"canopy/internal/authz"
	"canopy/internal/forest/models"
	"canopy/internal/forest/store"
	"canopy/internal/ledger"
	"canopy/internal/platform/metrics"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/platform/audit"
	"canopy/pkg/platform/sentinel"
)

// Auditor receives events for committed mutations.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

type Service struct {
	forests store.Store
	checker *authz.Checker
	tx      ledger.StoreTx
	auditor Auditor
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(forests store.Store, checker *authz.Checker, tx ledger.StoreTx, opts ...Option) *Service {
	s := &Service{forests: forests, checker: checker, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates the next forest id and stores the record. Every
// successful call consumes exactly one id.
//
// Errors: CodeNotAuthorized unless the caller is an admin, parent, or
// educator.
func (s *Service) Create(ctx context.Context, caller domain.UserID, name, description string, height domain.Height) (*models.Forest, error) {
	forest := &models.Forest{
		Name:        name,
		Description: description,
		CreatorID:   caller,
		CreatedAt:   height,
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.checker.RequireRole(txCtx, caller, authz.CreatorRoles...); err != nil {
			return err
		}
		if _, err := s.forests.Create(txCtx, forest); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store forest")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncForestsCreated()
	s.emit(ctx, forest)
	return forest, nil
}

// Get returns a snapshot of the forest, or nil when the id is unallocated.
func (s *Service) Get(ctx context.Context, id domain.ForestID) (*models.Forest, error) {
	forest, err := s.forests.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load forest")
	}
	return forest, nil
}

func (s *Service) emit(ctx context.Context, forest *models.Forest) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionForestCreated,
		Timestamp: time.Now().UTC(),
		Height:    forest.CreatedAt,
		ActorID:   forest.CreatorID,
		SubjectID: forest.CreatorID,
		ForestID:  forest.ID,
		Detail:    forest.Name,
	})
}
