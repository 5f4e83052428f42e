// Package handler is the HTTP surface of the identity registry.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"canopy/internal/identity/models"
	"canopy/internal/transport/http/shared"
	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/requestcontext"
)

// Service defines the identity operations the handler delegates to.
type Service interface {
	Register(ctx context.Context, caller domain.UserID, name string, role int, height domain.Height) (*models.User, error)
	Get(ctx context.Context, id domain.UserID) (*models.User, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the identity routes. The POST route expects the auth and
// height middleware to have run.
func (h *Handler) Register(authed, public chi.Router) {
	authed.Post("/users/register", h.handleRegister)
	public.Get("/users/{userID}", h.handleGet)
}

type registerRequest struct {
	Name string `json:"name"`
	Role int    `json:"role"`
}

type userResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         int    `json:"role"`
	RegisteredAt uint64 `json:"registered_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:           u.ID.String(),
		Name:         u.Name,
		Role:         int(u.Role),
		RegisteredAt: uint64(u.RegisteredAt),
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := requestcontext.CallerID(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.service.Register(ctx, caller, req.Name, req.Role, requestcontext.Height(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "register refused",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.service.Get(ctx, domain.UserID(chi.URLParam(r, "userID")))
	if err != nil {
		h.logger.ErrorContext(ctx, "user lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if user == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUserNotFound, "user does not exist"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, toUserResponse(user))
}
