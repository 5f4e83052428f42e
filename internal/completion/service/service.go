// Package service implements the Completion Ledger: guardian-verified and
// self-verified completion of milestones, gated by stored prerequisites.
package service

import (
	"context"
	"errors"
	"time"

	"canopy/internal/authz"
	"canopy/internal/completion/models"
	"canopy/internal/completion/store"
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

// MilestoneGraph is the slice of the milestone store the ledger needs:
// existence checks and the inbound prerequisite set.
type MilestoneGraph interface {
	Exists(ctx context.Context, id domain.MilestoneID) (bool, error)
	PrerequisiteIDs(ctx context.Context, id domain.MilestoneID) ([]domain.MilestoneID, error)
}

type Service struct {
	completions store.Store
	milestones  MilestoneGraph
	checker     *authz.Checker
	tx          ledger.StoreTx
	owner       domain.UserID
	auditor     Auditor
	metrics     *metrics.Metrics
}

type Option func(*Service)

// WithOwner names the platform operator principal, which bypasses the
// guardianship check on Complete. Unset means no bypass exists.
func WithOwner(id domain.UserID) Option {
	return func(s *Service) { s.owner = id }
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(completions store.Store, milestones MilestoneGraph, checker *authz.Checker, tx ledger.StoreTx, opts ...Option) *Service {
	s := &Service{completions: completions, milestones: milestones, checker: checker, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Complete records that subject finished the milestone, verified by caller.
// The caller must be the configured owner principal or a stored guardian of
// the subject. The owner bypass skips the relationship check entirely; it is
// the operator's escape hatch and is otherwise indistinguishable from a
// guardian verification in the stored record.
//
// Errors: CodeNotAuthorized, CodeMilestoneNotFound,
// CodeMilestoneAlreadyCompleted, CodePrerequisitesNotCompleted.
func (s *Service) Complete(ctx context.Context, caller domain.UserID, milestoneID domain.MilestoneID, subject domain.UserID, evidence domain.OptionalEvidence, height domain.Height) (*models.Completion, error) {
	completion := &models.Completion{
		MilestoneID: milestoneID,
		UserID:      subject,
		VerifierID:  caller,
		Evidence:    evidence,
		CompletedAt: height,
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if s.owner == "" || caller != s.owner {
			if err := s.checker.RequireGuardianship(txCtx, caller, subject); err != nil {
				return err
			}
		}
		return s.record(txCtx, completion)
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, completion)
	return completion, nil
}

// SelfComplete records that the caller finished the milestone on its own
// account. Only a registered child may self-verify; verifier and subject are
// the same principal.
//
// Errors: CodeInvalidUserRole when the caller is unregistered or not a
// child; otherwise as Complete.
func (s *Service) SelfComplete(ctx context.Context, caller domain.UserID, milestoneID domain.MilestoneID, evidence domain.OptionalEvidence, height domain.Height) (*models.Completion, error) {
	completion := &models.Completion{
		MilestoneID: milestoneID,
		UserID:      caller,
		VerifierID:  caller,
		Evidence:    evidence,
		CompletedAt: height,
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.checker.RequireRole(txCtx, caller, domain.RoleChild); err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotAuthorized) {
				return dErrors.New(dErrors.CodeInvalidUserRole, "self-completion requires a child role")
			}
			return err
		}
		return s.record(txCtx, completion)
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, completion)
	return completion, nil
}

// record runs the shared validation chain inside the transaction: milestone
// exists, key unclaimed, every prerequisite completed for the subject. Order
// matters; each check reads state the previous one established.
func (s *Service) record(ctx context.Context, c *models.Completion) error {
	ok, err := s.milestones.Exists(ctx, c.MilestoneID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check milestone")
	}
	if !ok {
		return dErrors.New(dErrors.CodeMilestoneNotFound, "milestone does not exist")
	}

	done, err := s.completions.Exists(ctx, c.MilestoneID, c.UserID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check completion")
	}
	if done {
		return dErrors.New(dErrors.CodeMilestoneAlreadyCompleted, "milestone already completed for this user")
	}

	if err := authz.RequirePrerequisites(ctx, s.milestones, s.completions, c.MilestoneID, c.UserID); err != nil {
		return err
	}

	if err := s.completions.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return dErrors.New(dErrors.CodeMilestoneAlreadyCompleted, "milestone already completed for this user")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store completion")
	}
	return nil
}

// IsCompleted reports whether a completion is stored for (milestone, user).
// No authorization: completion state is readable by anyone.
func (s *Service) IsCompleted(ctx context.Context, milestone domain.MilestoneID, user domain.UserID) (bool, error) {
	ok, err := s.completions.Exists(ctx, milestone, user)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check completion")
	}
	return ok, nil
}

// Get returns a snapshot of the completion record, or nil when none is
// stored. No authorization.
func (s *Service) Get(ctx context.Context, milestone domain.MilestoneID, user domain.UserID) (*models.Completion, error) {
	completion, err := s.completions.Find(ctx, milestone, user)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load completion")
	}
	return completion, nil
}

func (s *Service) committed(ctx context.Context, c *models.Completion) {
	s.metrics.IncCompletionsRecorded()
	if s.auditor == nil {
		return
	}
	detail := ""
	if c.Evidence.Valid {
		detail = c.Evidence.URL
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:      audit.ActionMilestoneCompleted,
		Timestamp:   time.Now().UTC(),
		Height:      c.CompletedAt,
		ActorID:     c.VerifierID,
		SubjectID:   c.UserID,
		MilestoneID: c.MilestoneID,
		Detail:      detail,
	})
}
