// Package authz is the cross-cutting authorization engine. Every mutating
// service consults it before touching a registry; read accessors bypass it.
//
// The checks are plain predicates over stored records: role membership,
// guardian-of-child links, and prerequisite satisfaction. Each returns a
// domain error code on refusal and nothing else.
package authz

import (
	"context"
	"errors"

	identitymodels "canopy/internal/identity/models"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/platform/sentinel"
)

// UserFinder resolves principals against the identity registry.
type UserFinder interface {
	FindByID(ctx context.Context, id domain.UserID) (*identitymodels.User, error)
}

// RelationshipChecker answers whether a guardian→child link is stored. The
// lookup is asymmetric: no reverse index exists, so queries always run
// guardian-to-child.
type RelationshipChecker interface {
	Exists(ctx context.Context, guardian, child domain.UserID) (bool, error)
}

// PrerequisiteLister returns the prerequisite milestone ids gating a
// milestone.
type PrerequisiteLister interface {
	PrerequisiteIDs(ctx context.Context, id domain.MilestoneID) ([]domain.MilestoneID, error)
}

// CompletionChecker answers whether a (milestone, user) completion exists.
type CompletionChecker interface {
	Exists(ctx context.Context, milestone domain.MilestoneID, user domain.UserID) (bool, error)
}

// CreatorRoles may create forests, milestones, and prerequisite edges.
var CreatorRoles = []domain.Role{domain.RoleAdmin, domain.RoleParent, domain.RoleEducator}

// GuardianRoles may create relationships to children.
var GuardianRoles = []domain.Role{domain.RoleParent, domain.RoleEducator}

// Checker evaluates role and relationship policies.
type Checker struct {
	users         UserFinder
	relationships RelationshipChecker
}

// NewChecker builds the engine. relationships may be nil for services that
// never evaluate guardianship.
func NewChecker(users UserFinder, relationships RelationshipChecker) *Checker {
	return &Checker{users: users, relationships: relationships}
}

// RequireRole resolves the caller and refuses unless its role is one of the
// allowed set. An unregistered caller satisfies no role and is refused with
// the same code, leaking nothing about registry contents.
func (c *Checker) RequireRole(ctx context.Context, caller domain.UserID, allowed ...domain.Role) (*identitymodels.User, error) {
	user, err := c.users.FindByID(ctx, caller)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotAuthorized, "caller is not registered")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve caller")
	}
	for _, role := range allowed {
		if user.Role == role {
			return user, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotAuthorized, "caller role does not permit this operation")
}

// RequireChild resolves the target and refuses unless it is a registered
// child.
//
// Errors: CodeChildNotRegistered both when the principal is unknown and when
// it holds a non-child role.
func (c *Checker) RequireChild(ctx context.Context, child domain.UserID) (*identitymodels.User, error) {
	user, err := c.users.FindByID(ctx, child)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeChildNotRegistered, "target is not registered")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve target")
	}
	if !user.IsChild() {
		return nil, dErrors.New(dErrors.CodeChildNotRegistered, "target is not a child")
	}
	return user, nil
}

// RequireGuardianship refuses unless a relationship (guardian → child) is
// stored.
func (c *Checker) RequireGuardianship(ctx context.Context, guardian, child domain.UserID) error {
	ok, err := c.relationships.Exists(ctx, guardian, child)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check relationship")
	}
	if !ok {
		return dErrors.New(dErrors.CodeNotAuthorized, "caller is not a guardian of the subject")
	}
	return nil
}

// RequirePrerequisites refuses unless every prerequisite of the milestone has
// a completion for the subject. The predicate folds AND over the stored edge
// set, short-circuiting on the first missing completion; an empty set is
// vacuously satisfied.
func RequirePrerequisites(ctx context.Context, edges PrerequisiteLister, completions CompletionChecker, milestone domain.MilestoneID, subject domain.UserID) error {
	prereqs, err := edges.PrerequisiteIDs(ctx, milestone)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list prerequisites")
	}
	for _, prereq := range prereqs {
		done, err := completions.Exists(ctx, prereq, subject)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check prerequisite completion")
		}
		if !done {
			return dErrors.New(dErrors.CodePrerequisitesNotCompleted, "prerequisite not completed")
		}
	}
	return nil
}
