//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"canopy/internal/forest/models"
	"canopy/internal/forest/store"
	"canopy/pkg/domain"
	"canopy/pkg/platform/sentinel"
	"canopy/pkg/testutil/containers"
)

type PostgresForestSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	ctx      context.Context
}

func TestPostgresForestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresForestSuite))
}

func (s *PostgresForestSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresForestSuite) TearDownSuite() {
	s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(s.ctx)
}

func (s *PostgresForestSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx,
		"completions", "prerequisite_edges", "milestones", "forests"))
}

func (s *PostgresForestSuite) TestIdentityColumnIsMonotonic() {
	first, err := s.store.Create(s.ctx, &models.Forest{Name: "Math", CreatorID: "alice", CreatedAt: 1})
	s.Require().NoError(err)
	s.EqualValues(1, first)

	second, err := s.store.Create(s.ctx, &models.Forest{Name: "Reading", CreatorID: "alice", CreatedAt: 2})
	s.Require().NoError(err)
	s.EqualValues(2, second)
}

func (s *PostgresForestSuite) TestRoundTrip() {
	id, err := s.store.Create(s.ctx, &models.Forest{
		Name: "Math", Description: "numbers", CreatorID: "alice", CreatedAt: 3,
	})
	s.Require().NoError(err)

	found, err := s.store.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Math", found.Name)
	s.Equal("numbers", found.Description)
	s.Equal(domain.UserID("alice"), found.CreatorID)
	s.EqualValues(3, found.CreatedAt)

	ok, err := s.store.Exists(s.ctx, id)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *PostgresForestSuite) TestAbsent() {
	_, err := s.store.FindByID(s.ctx, 99)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	ok, err := s.store.Exists(s.ctx, 99)
	s.Require().NoError(err)
	s.False(ok)
}
