package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"canopy/internal/authz"
	"canopy/internal/forest/store"
	identitymodels "canopy/internal/identity/models"
	identitystore "canopy/internal/identity/store"
	"canopy/internal/ledger"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
)

type ForestServiceSuite struct {
	suite.Suite
	users   *identitystore.InMemory
	forests *store.InMemory
	service *Service
	ctx     context.Context
}

func (s *ForestServiceSuite) SetupTest() {
	s.users = identitystore.NewInMemory()
	s.forests = store.NewInMemory()
	s.service = New(s.forests, authz.NewChecker(s.users, nil), ledger.NewSerializedTx())
	s.ctx = context.Background()
}

func TestForestServiceSuite(t *testing.T) {
	suite.Run(t, new(ForestServiceSuite))
}

func (s *ForestServiceSuite) register(id domain.UserID, role domain.Role) {
	s.Require().NoError(s.users.Create(s.ctx, &identitymodels.User{
		ID: id, Name: string(id), Role: role, RegisteredAt: 1,
	}))
}

// Ids are assigned in call order starting at 1 and never repeat.
func (s *ForestServiceSuite) TestMonotonicIDs() {
	s.register("alice", domain.RoleParent)

	first, err := s.service.Create(s.ctx, "alice", "Math", "numbers and counting", 1)
	s.Require().NoError(err)
	s.EqualValues(1, first.ID)

	second, err := s.service.Create(s.ctx, "alice", "Reading", "letters and words", 2)
	s.Require().NoError(err)
	s.EqualValues(2, second.ID)

	s.NotEqual(first.ID, second.ID)
}

func (s *ForestServiceSuite) TestRoleGate() {
	s.register("admin", domain.RoleAdmin)
	s.register("teach", domain.RoleEducator)
	s.register("alice", domain.RoleParent)
	s.register("kid", domain.RoleChild)

	for _, caller := range []domain.UserID{"admin", "teach", "alice"} {
		_, err := s.service.Create(s.ctx, caller, "Forest", "", 1)
		s.Require().NoError(err, "caller %s", caller)
	}

	_, err := s.service.Create(s.ctx, "kid", "Forest", "", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))

	_, err = s.service.Create(s.ctx, "ghost", "Forest", "", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
}

func (s *ForestServiceSuite) TestFailedCallsAllocateNothing() {
	s.register("alice", domain.RoleParent)
	s.register("kid", domain.RoleChild)

	_, err := s.service.Create(s.ctx, "kid", "Nope", "", 1)
	s.Require().Error(err)

	forest, err := s.service.Create(s.ctx, "alice", "Math", "", 2)
	s.Require().NoError(err)
	s.EqualValues(1, forest.ID, "rejected call must not consume an id")
}

func (s *ForestServiceSuite) TestGet() {
	s.register("alice", domain.RoleParent)
	created, err := s.service.Create(s.ctx, "alice", "Math", "desc", 3)
	s.Require().NoError(err)

	found, err := s.service.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal("Math", found.Name)
	s.EqualValues(3, found.CreatedAt)

	missing, err := s.service.Get(s.ctx, 99)
	s.Require().NoError(err)
	s.Nil(missing)
}
