// Package handler is the HTTP surface of the relationship registry.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"canopy/internal/relationship/models"
	"canopy/internal/transport/http/shared"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, caller, childID domain.UserID, kind string, height domain.Height) (*models.Relationship, error)
	Get(ctx context.Context, guardian, child domain.UserID) (*models.Relationship, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(authed, public chi.Router) {
	authed.Post("/relationships", h.handleCreate)
	public.Get("/relationships/{guardianID}/{childID}", h.handleGet)
}

type createRequest struct {
	ChildID string `json:"child_id"`
	Kind    string `json:"kind"`
}

type relationshipResponse struct {
	GuardianID string `json:"guardian_id"`
	ChildID    string `json:"child_id"`
	Kind       string `json:"kind"`
	CreatedAt  uint64 `json:"created_at"`
}

func toResponse(rel *models.Relationship) relationshipResponse {
	return relationshipResponse{
		GuardianID: rel.GuardianID.String(),
		ChildID:    rel.ChildID.String(),
		Kind:       string(rel.Kind),
		CreatedAt:  uint64(rel.CreatedAt),
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	rel, err := h.service.Create(ctx, caller, domain.UserID(req.ChildID), req.Kind, requestcontext.Height(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "relationship refused",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(rel))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	guardian := domain.UserID(chi.URLParam(r, "guardianID"))
	child := domain.UserID(chi.URLParam(r, "childID"))

	rel, err := h.service.Get(ctx, guardian, child)
	if err != nil {
		h.logger.ErrorContext(ctx, "relationship lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if rel == nil {
		shared.WriteNotFound(w)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(rel))
}
