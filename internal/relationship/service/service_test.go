package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"canopy/internal/authz"
	identitymodels "canopy/internal/identity/models"
	identitystore "canopy/internal/identity/store"
	"canopy/internal/ledger"
	"canopy/internal/relationship/store"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
)

type RelationshipServiceSuite struct {
	suite.Suite
	users   *identitystore.InMemory
	links   *store.InMemory
	service *Service
	ctx     context.Context
}

func (s *RelationshipServiceSuite) SetupTest() {
	s.users = identitystore.NewInMemory()
	s.links = store.NewInMemory()
	checker := authz.NewChecker(s.users, s.links)
	s.service = New(s.links, checker, ledger.NewSerializedTx())
	s.ctx = context.Background()
}

func TestRelationshipServiceSuite(t *testing.T) {
	suite.Run(t, new(RelationshipServiceSuite))
}

func (s *RelationshipServiceSuite) register(id domain.UserID, role domain.Role) {
	s.Require().NoError(s.users.Create(s.ctx, &identitymodels.User{
		ID: id, Name: string(id), Role: role, RegisteredAt: 1,
	}))
}

func (s *RelationshipServiceSuite) TestCreate() {
	s.register("alice", domain.RoleParent)
	s.register("teach", domain.RoleEducator)
	s.register("bob", domain.RoleChild)

	s.Run("parent links to child", func() {
		rel, err := s.service.Create(s.ctx, "alice", "bob", "parent-child", 5)
		s.Require().NoError(err)
		s.Equal(domain.KindParentChild, rel.Kind)
		s.EqualValues(5, rel.CreatedAt)
	})

	s.Run("educator links to the same child", func() {
		_, err := s.service.Create(s.ctx, "teach", "bob", "educator-child", 6)
		s.Require().NoError(err)
	})

	s.Run("duplicate ordered pair is rejected", func() {
		_, err := s.service.Create(s.ctx, "alice", "bob", "parent-child", 7)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateRelationship))
	})
}

func (s *RelationshipServiceSuite) TestAuthorizationGates() {
	s.register("admin", domain.RoleAdmin)
	s.register("kid", domain.RoleChild)
	s.register("other", domain.RoleChild)
	s.register("alice", domain.RoleParent)

	s.Run("admin cannot create relationships", func() {
		_, err := s.service.Create(s.ctx, "admin", "kid", "parent-child", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("child cannot create relationships", func() {
		_, err := s.service.Create(s.ctx, "kid", "other", "parent-child", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("unregistered caller is refused", func() {
		_, err := s.service.Create(s.ctx, "ghost", "kid", "parent-child", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("target must be a registered child", func() {
		_, err := s.service.Create(s.ctx, "alice", "ghost", "parent-child", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeChildNotRegistered))

		_, err = s.service.Create(s.ctx, "alice", "admin", "parent-child", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeChildNotRegistered))
	})

	s.Run("kind must be a supported value", func() {
		_, err := s.service.Create(s.ctx, "alice", "kid", "sibling", 1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidParameters))
	})
}

// Authorization is decided before the kind is parsed, and the child check
// comes before the kind check: a bad kind never masks a refused caller or an
// unregistered child.
func (s *RelationshipServiceSuite) TestCreateCheckOrdering() {
	s.register("alice", domain.RoleParent)
	s.register("kid", domain.RoleChild)

	_, err := s.service.Create(s.ctx, "ghost", "kid", "sibling", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))

	_, err = s.service.Create(s.ctx, "alice", "ghost", "sibling", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeChildNotRegistered))
}

func (s *RelationshipServiceSuite) TestGet() {
	s.register("alice", domain.RoleParent)
	s.register("bob", domain.RoleChild)
	_, err := s.service.Create(s.ctx, "alice", "bob", "parent-child", 2)
	s.Require().NoError(err)

	rel, err := s.service.Get(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.Require().NotNil(rel)

	// Reads are direction-sensitive and absence is not an error.
	rel, err = s.service.Get(s.ctx, "bob", "alice")
	s.Require().NoError(err)
	s.Nil(rel)
}
