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
	"canopy/internal/completion/service"
	"canopy/internal/completion/store"
	identitymodels "canopy/internal/identity/models"
	identitystore "canopy/internal/identity/store"
	"canopy/internal/ledger"
	milestonemodels "canopy/internal/milestone/models"
	milestonestore "canopy/internal/milestone/store"
	relationshipmodels "canopy/internal/relationship/models"
	relationshipstore "canopy/internal/relationship/store"
	"canopy/internal/transport/http/shared"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/testutil"
)

// Handler tests run against the real service over in-memory stores; the
// request context is stamped the way the auth and height middleware would.
type CompletionHandlerSuite struct {
	suite.Suite
	router     *chi.Mux
	users      *identitystore.InMemory
	milestones *milestonestore.InMemory
	ctx        context.Context
}

func (s *CompletionHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = identitystore.NewInMemory()
	relationships := relationshipstore.NewInMemory()
	s.milestones = milestonestore.NewInMemory()
	completions := store.NewInMemory()
	checker := authz.NewChecker(s.users, relationships)
	svc := service.New(completions, s.milestones, checker, ledger.NewSerializedTx())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router, s.router)

	// Bob is a registered child with one milestone available.
	s.Require().NoError(s.users.Create(s.ctx, &identitymodels.User{ID: "bob", Name: "Bob", Role: domain.RoleChild, RegisteredAt: 1}))
	s.Require().NoError(relationships.Create(s.ctx, &relationshipmodels.Relationship{GuardianID: "alice", ChildID: "bob", Kind: domain.KindParentChild, CreatedAt: 1}))
	_, err := s.milestones.Create(s.ctx, &milestonemodels.Milestone{Title: "Counting", Difficulty: 1, ForestID: 1, CreatorID: "alice", CreatedAt: 1})
	s.Require().NoError(err)
}

func TestCompletionHandlerSuite(t *testing.T) {
	suite.Run(t, new(CompletionHandlerSuite))
}

func (s *CompletionHandlerSuite) post(path string, body any, caller domain.UserID, height domain.Height) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req = testutil.AsCall(req, caller, height)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *CompletionHandlerSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *CompletionHandlerSuite) TestSelfCompleteAndRead() {
	rec := s.post("/milestones/1/completions/self", selfCompleteRequest{}, "bob", 2)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var created completionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal("bob", created.UserID)
	s.Equal("bob", created.VerifierID)
	s.EqualValues(2, created.CompletedAt)

	rec = s.get("/milestones/1/completions/bob")
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.get("/milestones/1/completions/ghost")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *CompletionHandlerSuite) TestGuardianComplete() {
	evidence := "https://evidence/1"
	rec := s.post("/milestones/1/completions", completeRequest{ChildID: "bob", Evidence: &evidence}, "alice", 2)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var created completionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal("alice", created.VerifierID)
	s.Require().NotNil(created.Evidence)
	s.Equal(evidence, *created.Evidence)
}

func (s *CompletionHandlerSuite) TestErrorEnvelope() {
	// Stranger carol is no guardian of bob.
	s.Require().NoError(s.users.Create(s.ctx, &identitymodels.User{ID: "carol", Name: "Carol", Role: domain.RoleParent, RegisteredAt: 1}))

	rec := s.post("/milestones/1/completions", completeRequest{ChildID: "bob"}, "carol", 2)
	s.Require().Equal(http.StatusForbidden, rec.Code)

	var envelope shared.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	s.Equal(string(dErrors.CodeNotAuthorized), envelope.Error)
}

func (s *CompletionHandlerSuite) TestDuplicateConflict() {
	rec := s.post("/milestones/1/completions/self", selfCompleteRequest{}, "bob", 2)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.post("/milestones/1/completions/self", selfCompleteRequest{}, "bob", 3)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *CompletionHandlerSuite) TestBadMilestoneID() {
	rec := s.post("/milestones/zero/completions/self", selfCompleteRequest{}, "bob", 2)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/milestones/1/completions/self", bytes.NewReader([]byte(`{broken`)))
	req = testutil.AsCall(req, "bob", 2)
	rec2 := httptest.NewRecorder()
	s.router.ServeHTTP(rec2, req)
	s.Equal(http.StatusBadRequest, rec2.Code)
}
