// Package service implements the Identity & Role Registry: self-registration
// with a fixed role, and unauthenticated snapshot reads.
package service

import (
	"context"
	"errors"
	"time"

	"canopy/internal/identity/models"
	"canopy/internal/identity/store"
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

// Service orchestrates the identity registry.
type Service struct {
	users   store.Store
	tx      ledger.StoreTx
	auditor Auditor
	metrics *metrics.Metrics
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithAuditor attaches an audit emitter.
func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New builds the identity service. tx serializes mutations; pass
// ledger.NewSerializedTx() for the in-memory substrate.
func New(users store.Store, tx ledger.StoreTx, opts ...Option) *Service {
	s := &Service{users: users, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register stores a new user for the caller principal. The role is fixed
// forever; no re-registration or role change is permitted.
//
// Errors: CodeInvalidUserRole when role is outside [1,4];
// CodeMilestoneAlreadyExists when the caller already has a record (the
// ledger's historical duplicate-registration code).
func (s *Service) Register(ctx context.Context, caller domain.UserID, name string, role int, height domain.Height) (*models.User, error) {
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           caller,
		Name:         name,
		Role:         parsedRole,
		RegisteredAt: height,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			if errors.Is(err, sentinel.ErrDuplicate) {
				return dErrors.New(dErrors.CodeMilestoneAlreadyExists, "caller is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncUsersRegistered()
	s.emit(ctx, user)
	return user, nil
}

// Get returns a snapshot of the user, or nil when the principal has no
// record. Absence is not an error; only infrastructure failures are.
func (s *Service) Get(ctx context.Context, id domain.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) emit(ctx context.Context, user *models.User) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    audit.ActionUserRegistered,
		Timestamp: time.Now().UTC(),
		Height:    user.RegisteredAt,
		ActorID:   user.ID,
		SubjectID: user.ID,
		Detail:    user.Role.String(),
	})
}
