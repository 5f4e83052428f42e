// Package handler is the HTTP surface of the milestone graph.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"canopy/internal/milestone/models"
	"canopy/internal/milestone/service"
	"canopy/internal/transport/http/shared"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, caller domain.UserID, params service.CreateParams, height domain.Height) (*models.Milestone, error)
	AddPrerequisite(ctx context.Context, caller domain.UserID, milestoneID, prerequisiteID domain.MilestoneID, height domain.Height) error
	Get(ctx context.Context, id domain.MilestoneID) (*models.Milestone, error)
	PrerequisitesOf(ctx context.Context, id domain.MilestoneID) ([]models.Edge, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(authed, public chi.Router) {
	authed.Post("/milestones", h.handleCreate)
	authed.Post("/milestones/{milestoneID}/prerequisites", h.handleAddPrerequisite)
	public.Get("/milestones/{milestoneID}", h.handleGet)
	public.Get("/milestones/{milestoneID}/prerequisites", h.handleListPrerequisites)
}

type createRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Difficulty  int     `json:"difficulty"`
	ForestID    uint64  `json:"forest_id"`
	ParentID    *uint64 `json:"parent_id,omitempty"`
}

type addPrerequisiteRequest struct {
	PrerequisiteID uint64 `json:"prerequisite_id"`
}

type milestoneResponse struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Difficulty  int     `json:"difficulty"`
	ForestID    uint64  `json:"forest_id"`
	ParentID    *uint64 `json:"parent_id,omitempty"`
	CreatorID   string  `json:"creator_id"`
	CreatedAt   uint64  `json:"created_at"`
}

type edgeResponse struct {
	MilestoneID    uint64 `json:"milestone_id"`
	PrerequisiteID uint64 `json:"prerequisite_id"`
	AddedAt        uint64 `json:"added_at"`
}

func toResponse(m *models.Milestone) milestoneResponse {
	resp := milestoneResponse{
		ID:          uint64(m.ID),
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		Difficulty:  m.Difficulty,
		ForestID:    uint64(m.ForestID),
		CreatorID:   m.CreatorID.String(),
		CreatedAt:   uint64(m.CreatedAt),
	}
	if m.ParentID.Valid {
		parent := uint64(m.ParentID.ID)
		resp.ParentID = &parent
	}
	return resp
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	params := service.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		ForestID:    domain.ForestID(req.ForestID),
	}
	if req.ParentID != nil {
		params.ParentID = domain.SomeMilestoneID(domain.MilestoneID(*req.ParentID))
	}

	milestone, err := h.service.Create(ctx, caller, params, requestcontext.Height(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "milestone refused",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(milestone))
}

func (h *Handler) handleAddPrerequisite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	milestoneID, err := domain.ParseMilestoneID(chi.URLParam(r, "milestoneID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req addPrerequisiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	err = h.service.AddPrerequisite(ctx, caller, milestoneID, domain.MilestoneID(req.PrerequisiteID), requestcontext.Height(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "prerequisite refused",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseMilestoneID(chi.URLParam(r, "milestoneID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	milestone, err := h.service.Get(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "milestone lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if milestone == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeMilestoneNotFound, "milestone does not exist"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(milestone))
}

func (h *Handler) handleListPrerequisites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseMilestoneID(chi.URLParam(r, "milestoneID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	edges, err := h.service.PrerequisitesOf(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]edgeResponse, 0, len(edges))
	for _, e := range edges {
		out = append(out, edgeResponse{
			MilestoneID:    uint64(e.MilestoneID),
			PrerequisiteID: uint64(e.PrerequisiteID),
			AddedAt:        uint64(e.AddedAt),
		})
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"edges": out})
}
