package interactionshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peerpulse/internal/domain/auth"
	"peerpulse/internal/domain/interactions"
	"peerpulse/internal/transport/http/api"
	"peerpulse/internal/transport/http/middleware"
	"peerpulse/internal/transport/http/shared"
)

type Handler struct {
	Service *interactions.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *interactions.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermInteractionsWrite, h.Perms)).Post("/interactions", h.handleRecordInteraction)
	r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/employees/{employeeID}/interactions", h.handleListInteractions)
}

func (h *Handler) handleRecordInteraction(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmployeeID string `json:"employeeId"`
		PeerID     string `json:"peerId"`
		Type       string `json:"type"`
		Count      int    `json:"count"`
		Minutes    int    `json:"minutes"`
		OccurredAt string `json:"occurredAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("peerId", payload.PeerID, "peer id is required")
	v.Enum("type", payload.Type, interactions.KnownTypes, "must be one of chat, meeting, task, file")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	occurredAt, err := shared.ParseDate(payload.OccurredAt)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid occurredAt date", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.Record(r.Context(), payload.EmployeeID, payload.PeerID, payload.Type, payload.Count, payload.Minutes, occurredAt); err != nil {
		switch {
		case errors.Is(err, interactions.ErrSelfInteraction),
			errors.Is(err, interactions.ErrInvalidCount),
			errors.Is(err, interactions.ErrUnknownType):
			api.Fail(w, http.StatusBadRequest, "invalid_interaction", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "interaction_record_failed", "failed to record interaction", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Created(w, map[string]any{"recorded": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	rows, err := h.Service.CollaborationsOf(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "interaction_list_failed", "failed to list interactions", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}
