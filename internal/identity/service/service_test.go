package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"canopy/internal/identity/store"
	"canopy/internal/ledger"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
)

type IdentityServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	service *Service
	ctx     context.Context
}

func (s *IdentityServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.service = New(s.store, ledger.NewSerializedTx())
	s.ctx = context.Background()
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) TestRegister() {
	s.Run("stores a user with the registration height", func() {
		user, err := s.service.Register(s.ctx, "alice", "Alice", 2, 10)
		s.Require().NoError(err)
		s.Equal(domain.RoleParent, user.Role)
		s.EqualValues(10, user.RegisteredAt)

		found, err := s.service.Get(s.ctx, "alice")
		s.Require().NoError(err)
		s.Require().NotNil(found)
		s.Equal("Alice", found.Name)
	})

	s.Run("rejects roles outside 1..4", func() {
		for _, role := range []int{0, 5, -2} {
			_, err := s.service.Register(s.ctx, "someone", "Someone", role, 1)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidUserRole), "role %d", role)
		}
	})
}

// Registration succeeds exactly once per identity; the second call fails with
// the duplicate code and the stored role never changes.
func (s *IdentityServiceSuite) TestRegisterIsOnce() {
	_, err := s.service.Register(s.ctx, "bob", "Bob", 4, 1)
	s.Require().NoError(err)

	for _, role := range []int{1, 2, 3, 4} {
		_, err := s.service.Register(s.ctx, "bob", "Bobby", role, 2)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeMilestoneAlreadyExists))
	}

	found, err := s.service.Get(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(domain.RoleChild, found.Role)
	s.Equal("Bob", found.Name)
	s.EqualValues(1, found.RegisteredAt)
}

func (s *IdentityServiceSuite) TestGetAbsentIsNotAnError() {
	user, err := s.service.Get(s.ctx, "ghost")
	s.Require().NoError(err)
	s.Nil(user)
}
