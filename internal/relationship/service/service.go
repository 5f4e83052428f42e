// Package service implements the Relationship Registry: guardian→child links
// that later authorize completion verification on a child's behalf.
package service

import (
	"context"
	"errors"
	"time"

	"canopy/internal/authz"
	"canopy/internal/ledger"
	"canopy/internal/platform/metrics"
	"canopy/internal/relationship/models"
	"canopy/internal/relationship/store"
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
	relationships store.Store
	checker       *authz.Checker
	tx            ledger.StoreTx
	auditor       Auditor
	metrics       *metrics.Metrics
}

type Option func(*Service)

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(relationships store.Store, checker *authz.Checker, tx ledger.StoreTx, opts ...Option) *Service {
	s := &Service{relationships: relationships, checker: checker, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a guardian→child link for the caller. The link is asymmetric
// and permanent; there is no revocation.
//
// Errors: CodeNotAuthorized unless the caller is a parent or educator;
// CodeChildNotRegistered unless the target is a registered child;
// CodeInvalidParameters for an unsupported kind; CodeDuplicateRelationship
// when the ordered pair already exists. Checks run in that order.
func (s *Service) Create(ctx context.Context, caller, childID domain.UserID, kind string, height domain.Height) (*models.Relationship, error) {
	rel := &models.Relationship{
		GuardianID: caller,
		ChildID:    childID,
		CreatedAt:  height,
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.checker.RequireRole(txCtx, caller, authz.GuardianRoles...); err != nil {
			return err
		}
		if _, err := s.checker.RequireChild(txCtx, childID); err != nil {
			return err
		}
		parsedKind, err := domain.ParseRelationshipKind(kind)
		if err != nil {
			return err
		}
		rel.Kind = parsedKind
		if err := s.relationships.Create(txCtx, rel); err != nil {
			if errors.Is(err, sentinel.ErrDuplicate) {
				return dErrors.New(dErrors.CodeDuplicateRelationship, "pair is already linked")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store relationship")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRelationshipsCreated()
	s.emit(ctx, rel)
	return rel, nil
}

// Get returns a snapshot of the link, or nil when the ordered pair has no
// record.
func (s *Service) Get(ctx context.Context, guardian, child domain.UserID) (*models.Relationship, error) {
	rel, err := s.relationships.Find(ctx, guardian, child)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load relationship")
	}
	return rel, nil
}

func (s *Service) emit(ctx context.Context, rel *models.Relationship) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionRelationshipCreated,
		Timestamp: time.Now().UTC(),
		Height:    rel.CreatedAt,
		ActorID:   rel.GuardianID,
		SubjectID: rel.ChildID,
		Detail:    rel.Kind.String(),
	})
}
