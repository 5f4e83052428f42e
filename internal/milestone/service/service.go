// Package service implements the Milestone Graph: node creation and the
// prerequisite edge set.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canopy/internal/authz"
	"canopy/internal/ledger"
	"canopy/internal/milestone/models"
	"canopy/internal/milestone/store"
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

// ForestChecker answers whether a forest id is allocated.
type ForestChecker interface {
	Exists(ctx context.Context, id domain.ForestID) (bool, error)
}

type Service struct {
	milestones store.Store
	forests    ForestChecker
	checker    *authz.Checker
	tx         ledger.StoreTx
	auditor    Auditor
	metrics    *metrics.Metrics
}

type Option func(*Service)

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(milestones store.Store, forests ForestChecker, checker *authz.Checker, tx ledger.StoreTx, opts ...Option) *Service {
	s := &Service{milestones: milestones, forests: forests, checker: checker, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates the next milestone id and stores the node. The parent, if
// given, is a display nesting only and carries no completion semantics.
//
// Errors: CodeNotAuthorized unless the caller is an admin, parent, or
// educator; CodeForestNotFound / CodeParentMilestoneNotFound when a
// referenced record is absent; CodeInvalidParameters when difficulty is
// outside [1, 5]. Checks run in that order.
func (s *Service) Create(ctx context.Context, caller domain.UserID, params CreateParams, height domain.Height) (*models.Milestone, error) {
	milestone := &models.Milestone{
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Difficulty:  params.Difficulty,
		ForestID:    params.ForestID,
		ParentID:    params.ParentID,
		CreatorID:   caller,
		CreatedAt:   height,
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.checker.RequireRole(txCtx, caller, authz.CreatorRoles...); err != nil {
			return err
		}
		ok, err := s.forests.Exists(txCtx, params.ForestID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check forest")
		}
		if !ok {
			return dErrors.New(dErrors.CodeForestNotFound, "forest does not exist")
		}
		if params.ParentID.Valid {
			ok, err := s.milestones.Exists(txCtx, params.ParentID.ID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check parent milestone")
			}
			if !ok {
				return dErrors.New(dErrors.CodeParentMilestoneNotFound, "parent milestone does not exist")
			}
		}
		if params.Difficulty < models.MinDifficulty || params.Difficulty > models.MaxDifficulty {
			return dErrors.New(dErrors.CodeInvalidParameters,
				fmt.Sprintf("difficulty must be between %d and %d", models.MinDifficulty, models.MaxDifficulty))
		}
		if _, err := s.milestones.Create(txCtx, milestone); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store milestone")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMilestonesCreated()
	s.emit(ctx, audit.ActionMilestoneCreated, caller, milestone.ID, milestone.ForestID, height, milestone.Title)
	return milestone, nil
}

// CreateParams carries the caller-supplied fields of a new milestone.
type CreateParams struct {
	Title       string
	Description string
	Category    string
	Difficulty  int
	ForestID    domain.ForestID
	ParentID    domain.OptionalMilestoneID
}

// AddPrerequisite stores the directed edge prerequisite → milestone.
// Re-adding an existing edge refreshes its timestamp and succeeds. A
// milestone can never be its own prerequisite; longer cycles are not
// checked.
//
// Errors: CodeInvalidParameters on a self-loop; CodeNotAuthorized unless the
// caller is an admin, parent, or educator; CodeMilestoneNotFound when either
// endpoint is absent.
func (s *Service) AddPrerequisite(ctx context.Context, caller domain.UserID, milestoneID, prerequisiteID domain.MilestoneID, height domain.Height) error {
	if milestoneID == prerequisiteID {
		return dErrors.New(dErrors.CodeInvalidParameters, "milestone cannot be its own prerequisite")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.checker.RequireRole(txCtx, caller, authz.CreatorRoles...); err != nil {
			return err
		}
		for _, id := range []domain.MilestoneID{milestoneID, prerequisiteID} {
			ok, err := s.milestones.Exists(txCtx, id)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check milestone")
			}
			if !ok {
				return dErrors.New(dErrors.CodeMilestoneNotFound, "milestone does not exist")
			}
		}
		edge := &models.Edge{MilestoneID: milestoneID, PrerequisiteID: prerequisiteID, AddedAt: height}
		if err := s.milestones.UpsertEdge(txCtx, edge); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store prerequisite edge")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncPrerequisitesAdded()
	s.emit(ctx, audit.ActionPrerequisiteAdded, caller, milestoneID, 0, height, fmt.Sprintf("prerequisite %d", prerequisiteID))
	return nil
}

// Get returns a snapshot of the milestone, or nil when the id is
// unallocated.
func (s *Service) Get(ctx context.Context, id domain.MilestoneID) (*models.Milestone, error) {
	milestone, err := s.milestones.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load milestone")
	}
	return milestone, nil
}

// PrerequisitesOf lists the inbound requirement edges of the milestone.
//
// Errors: CodeMilestoneNotFound when the id is unallocated.
func (s *Service) PrerequisitesOf(ctx context.Context, id domain.MilestoneID) ([]models.Edge, error) {
	ok, err := s.milestones.Exists(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check milestone")
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeMilestoneNotFound, "milestone does not exist")
	}
	edges, err := s.milestones.EdgesOf(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list prerequisites")
	}
	return edges, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, actor domain.UserID, milestone domain.MilestoneID, forest domain.ForestID, height domain.Height, detail string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:      action,
		Timestamp:   time.Now().UTC(),
		Height:      height,
		ActorID:     actor,
		SubjectID:   actor,
		ForestID:    forest,
		MilestoneID: milestone,
		Detail:      detail,
	})
}
