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
	identitymodels "canopy/internal/identity/models"
	identitystore "canopy/internal/identity/store"
	"canopy/internal/ledger"
	"canopy/internal/relationship/service"
	"canopy/internal/relationship/store"
	"canopy/internal/transport/http/shared"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/testutil"
)

// Handler tests run against the real service over in-memory stores; the
// request context is stamped the way the auth and height middleware would.
type RelationshipHandlerSuite struct {
	suite.Suite
	router *chi.Mux
	users  *identitystore.InMemory
	ctx    context.Context
}

func (s *RelationshipHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = identitystore.NewInMemory()
	links := store.NewInMemory()
	checker := authz.NewChecker(s.users, links)
	svc := service.New(links, checker, ledger.NewSerializedTx())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router, s.router)

	s.Require().NoError(s.users.Create(s.ctx, &identitymodels.User{ID: "alice", Name: "Alice", Role: domain.RoleParent, RegisteredAt: 1}))
	s.Require().NoError(s.users.Create(s.ctx, &identitymodels.User{ID: "bob", Name: "Bob", Role: domain.RoleChild, RegisteredAt: 1}))
}

func TestRelationshipHandlerSuite(t *testing.T) {
	suite.Run(t, new(RelationshipHandlerSuite))
}

func (s *RelationshipHandlerSuite) post(body any, caller domain.UserID, height domain.Height) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/relationships", bytes.NewReader(raw))
	req = testutil.AsCall(req, caller, height)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RelationshipHandlerSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RelationshipHandlerSuite) TestCreateAndRead() {
	rec := s.post(createRequest{ChildID: "bob", Kind: "parent-child"}, "alice", 2)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var created relationshipResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal("alice", created.GuardianID)
	s.Equal("bob", created.ChildID)
	s.Equal("parent-child", created.Kind)
	s.EqualValues(2, created.CreatedAt)

	rec = s.get("/relationships/alice/bob")
	s.Require().Equal(http.StatusOK, rec.Code)

	// Reads are direction-sensitive.
	rec = s.get("/relationships/bob/alice")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RelationshipHandlerSuite) TestErrorEnvelope() {
	rec := s.post(createRequest{ChildID: "ghost", Kind: "parent-child"}, "alice", 2)
	s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)

	var envelope shared.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	s.Equal(string(dErrors.CodeChildNotRegistered), envelope.Error)
}

func (s *RelationshipHandlerSuite) TestDuplicateConflict() {
	rec := s.post(createRequest{ChildID: "bob", Kind: "parent-child"}, "alice", 2)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.post(createRequest{ChildID: "bob", Kind: "parent-child"}, "alice", 3)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *RelationshipHandlerSuite) TestBrokenBody() {
	req := httptest.NewRequest(http.MethodPost, "/relationships", bytes.NewReader([]byte(`{broken`)))
	req = testutil.AsCall(req, "alice", 2)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}
