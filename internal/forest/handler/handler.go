// Package handler is the HTTP surface of the forest registry.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"canopy/internal/forest/models"
	"canopy/internal/transport/http/shared"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, caller domain.UserID, name, description string, height domain.Height) (*models.Forest, error)
	Get(ctx context.Context, id domain.ForestID) (*models.Forest, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(authed, public chi.Router) {
	authed.Post("/forests", h.handleCreate)
	public.Get("/forests/{forestID}", h.handleGet)
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type forestResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatorID   string `json:"creator_id"`
	CreatedAt   uint64 `json:"created_at"`
}

func toResponse(f *models.Forest) forestResponse {
	return forestResponse{
		ID:          uint64(f.ID),
		Name:        f.Name,
		Description: f.Description,
		CreatorID:   f.CreatorID.String(),
		CreatedAt:   uint64(f.CreatedAt),
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

	forest, err := h.service.Create(ctx, caller, req.Name, req.Description, requestcontext.Height(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "forest refused",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(forest))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseForestID(chi.URLParam(r, "forestID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	forest, err := h.service.Get(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "forest lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if forest == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeForestNotFound, "forest does not exist"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(forest))
}
