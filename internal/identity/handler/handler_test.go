package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"canopy/internal/identity/service"
	"canopy/internal/identity/store"
	"canopy/internal/ledger"
	"canopy/internal/transport/http/shared"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/testutil"
)

type IdentityHandlerSuite struct {
	suite.Suite
	router *chi.Mux
}

func (s *IdentityHandlerSuite) SetupTest() {
	svc := service.New(store.NewInMemory(), ledger.NewSerializedTx())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router, s.router)
}

func TestIdentityHandlerSuite(t *testing.T) {
	suite.Run(t, new(IdentityHandlerSuite))
}

func (s *IdentityHandlerSuite) register(caller domain.UserID, name string, role int, height domain.Height) *httptest.ResponseRecorder {
	raw, err := json.Marshal(registerRequest{Name: name, Role: role})
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewReader(raw))
	req = testutil.AsCall(req, caller, height)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *IdentityHandlerSuite) TestRegisterAndGet() {
	rec := s.register("alice", "Alice", int(domain.RoleParent), 1)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var created userResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal("alice", created.ID)
	s.Equal(int(domain.RoleParent), created.Role)

	req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)
}

func (s *IdentityHandlerSuite) TestDuplicateRegistration() {
	s.Require().Equal(http.StatusCreated, s.register("alice", "Alice", int(domain.RoleParent), 1).Code)

	rec := s.register("alice", "Alice", int(domain.RoleChild), 2)
	s.Require().Equal(http.StatusConflict, rec.Code)

	var envelope shared.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	s.Equal(string(dErrors.CodeMilestoneAlreadyExists), envelope.Error)
}

func (s *IdentityHandlerSuite) TestInvalidRole() {
	rec := s.register("alice", "Alice", 7, 1)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *IdentityHandlerSuite) TestGetAbsent() {
	req := httptest.NewRequest(http.MethodGet, "/users/ghost", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusNotFound, rec.Code)
}
