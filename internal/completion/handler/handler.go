// Package handler is the HTTP surface of the completion ledger.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"canopy/internal/completion/models"
	"canopy/internal/transport/http/shared"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/requestcontext"
)

type Service interface {
	Complete(ctx context.Context, caller domain.UserID, milestoneID domain.MilestoneID, subject domain.UserID, evidence domain.OptionalEvidence, height domain.Height) (*models.Completion, error)
	SelfComplete(ctx context.Context, caller domain.UserID, milestoneID domain.MilestoneID, evidence domain.OptionalEvidence, height domain.Height) (*models.Completion, error)
	Get(ctx context.Context, milestone domain.MilestoneID, user domain.UserID) (*models.Completion, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(authed, public chi.Router) {
	authed.Post("/milestones/{milestoneID}/completions", h.handleComplete)
	authed.Post("/milestones/{milestoneID}/completions/self", h.handleSelfComplete)
	public.Get("/milestones/{milestoneID}/completions/{userID}", h.handleGet)
}

type completeRequest struct {
	ChildID  string  `json:"child_id"`
	Evidence *string `json:"evidence,omitempty"`
}

type selfCompleteRequest struct {
	Evidence *string `json:"evidence,omitempty"`
}

type completionResponse struct {
	MilestoneID uint64  `json:"milestone_id"`
	UserID      string  `json:"user_id"`
	VerifierID  string  `json:"verifier_id"`
	Evidence    *string `json:"evidence,omitempty"`
	CompletedAt uint64  `json:"completed_at"`
}

func toResponse(c *models.Completion) completionResponse {
	resp := completionResponse{
		MilestoneID: uint64(c.MilestoneID),
		UserID:      c.UserID.String(),
		VerifierID:  c.VerifierID.String(),
		CompletedAt: uint64(c.CompletedAt),
	}
	if c.Evidence.Valid {
		evidence := c.Evidence.URL
		resp.Evidence = &evidence
	}
	return resp
}

func optionalEvidence(raw *string) domain.OptionalEvidence {
	if raw == nil {
		return domain.OptionalEvidence{}
	}
	return domain.SomeEvidence(*raw)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	milestoneID, err := domain.ParseMilestoneID(chi.URLParam(r, "milestoneID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	completion, err := h.service.Complete(ctx, caller, milestoneID, domain.UserID(req.ChildID), optionalEvidence(req.Evidence), requestcontext.Height(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "completion refused",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(completion))
}

func (h *Handler) handleSelfComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	milestoneID, err := domain.ParseMilestoneID(chi.URLParam(r, "milestoneID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req selfCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	completion, err := h.service.SelfComplete(ctx, caller, milestoneID, optionalEvidence(req.Evidence), requestcontext.Height(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "self-completion refused",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(completion))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	milestoneID, err := domain.ParseMilestoneID(chi.URLParam(r, "milestoneID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	completion, err := h.service.Get(ctx, milestoneID, domain.UserID(chi.URLParam(r, "userID")))
	if err != nil {
		h.logger.ErrorContext(ctx, "completion lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if completion == nil {
		shared.WriteNotFound(w)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(completion))
}
