package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"canopy/internal/authz"
	forestmodels "canopy/internal/forest/models"
	foreststore "canopy/internal/forest/store"
	identitymodels "canopy/internal/identity/models"
	identitystore "canopy/internal/identity/store"
	"canopy/internal/ledger"
	"canopy/internal/milestone/service"
	"canopy/internal/milestone/store"
	"canopy/internal/transport/http/shared"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/testutil"
)

// Handler tests run against the real service over in-memory stores; the
// request context is stamped the way the auth and height middleware would.
type MilestoneHandlerSuite struct {
	suite.Suite
	router *chi.Mux
	users  *identitystore.InMemory
	ctx    context.Context
}

func (s *MilestoneHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = identitystore.NewInMemory()
	forests := foreststore.NewInMemory()
	milestones := store.NewInMemory()
	checker := authz.NewChecker(s.users, nil)
	svc := service.New(milestones, forests, checker, ledger.NewSerializedTx())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router, s.router)

	s.Require().NoError(s.users.Create(s.ctx, &identitymodels.User{ID: "alice", Name: "Alice", Role: domain.RoleParent, RegisteredAt: 1}))
	_, err := forests.Create(s.ctx, &forestmodels.Forest{Name: "Math", CreatorID: "alice", CreatedAt: 1})
	s.Require().NoError(err)
}

func TestMilestoneHandlerSuite(t *testing.T) {
	suite.Run(t, new(MilestoneHandlerSuite))
}

func (s *MilestoneHandlerSuite) post(path string, body any, caller domain.UserID, height domain.Height) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req = testutil.AsCall(req, caller, height)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *MilestoneHandlerSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *MilestoneHandlerSuite) create(title string, height domain.Height) milestoneResponse {
	rec := s.post("/milestones", createRequest{Title: title, Difficulty: 2, ForestID: 1}, "alice", height)
	s.Require().Equal(http.StatusCreated, rec.Code)
	var created milestoneResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	return created
}

func (s *MilestoneHandlerSuite) TestCreateAndRead() {
	created := s.create("Counting", 2)
	s.EqualValues(1, created.ID)
	s.Equal("alice", created.CreatorID)
	s.EqualValues(2, created.CreatedAt)

	parent := created.ID
	rec := s.post("/milestones", createRequest{Title: "Skip counting", Difficulty: 2, ForestID: 1, ParentID: &parent}, "alice", 3)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var nested milestoneResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &nested))
	s.Require().NotNil(nested.ParentID)
	s.Equal(parent, *nested.ParentID)

	rec = s.get("/milestones/1")
	s.Require().Equal(http.StatusOK, rec.Code)

	var found milestoneResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &found))
	s.Equal(created, found)
}

func (s *MilestoneHandlerSuite) TestPrerequisites() {
	counting := s.create("Counting", 2)
	addition := s.create("Addition", 3)

	rec := s.post("/milestones/2/prerequisites", addPrerequisiteRequest{PrerequisiteID: counting.ID}, "alice", 4)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.get("/milestones/2/prerequisites")
	s.Require().Equal(http.StatusOK, rec.Code)

	var listed struct {
		Edges []edgeResponse `json:"edges"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &listed))
	s.Require().Len(listed.Edges, 1)
	s.Equal(addition.ID, listed.Edges[0].MilestoneID)
	s.Equal(counting.ID, listed.Edges[0].PrerequisiteID)
	s.EqualValues(4, listed.Edges[0].AddedAt)
}

func (s *MilestoneHandlerSuite) TestErrorEnvelope() {
	s.Require().NoError(s.users.Create(s.ctx, &identitymodels.User{ID: "kid", Name: "Kid", Role: domain.RoleChild, RegisteredAt: 1}))

	rec := s.post("/milestones", createRequest{Title: "Counting", Difficulty: 2, ForestID: 1}, "kid", 2)
	s.Require().Equal(http.StatusForbidden, rec.Code)

	var envelope shared.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	s.Equal(string(dErrors.CodeNotAuthorized), envelope.Error)

	rec = s.post("/milestones", createRequest{Title: "Counting", Difficulty: 2, ForestID: 99}, "alice", 2)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *MilestoneHandlerSuite) TestGetAbsentAndBadID() {
	rec := s.get("/milestones/99")
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.get("/milestones/zero")
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *MilestoneHandlerSuite) TestBrokenBody() {
	req := httptest.NewRequest(http.MethodPost, "/milestones", bytes.NewReader([]byte(`{broken`)))
	req = testutil.AsCall(req, "alice", 2)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}
