package requestshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peerpulse/internal/domain/assignment"
	"peerpulse/internal/domain/auth"
	"peerpulse/internal/transport/http/api"
	"peerpulse/internal/transport/http/middleware"
)

type Handler struct {
	Service *assignment.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *assignment.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/requests", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermFeedbackRead, h.Perms)).Get("/pending", h.handlePending)
		r.With(middleware.RequirePermission(auth.PermFeedbackRead, h.Perms)).Get("/", h.handleRequestsFrom)
		r.With(middleware.RequirePermission(auth.PermFeedbackWrite, h.Perms)).Patch("/{requestID}/status", h.handleUpdateStatus)
		r.With(middleware.RequirePermission(auth.PermFeedbackWrite, h.Perms)).Post("/{requestID}/response", h.handleSubmitResponse)
	})
}

// handlePending lists open requests where the caller is the provider. An
// explicit employeeId query is honored for admins looking at someone else.
func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	providerID := r.URL.Query().Get("employeeId")
	if providerID == "" {
		providerID = user.EmployeeID
	}
	if providerID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_query", "employeeId is required", middleware.GetRequestID(r.Context()))
		return
	}

	requests, err := h.Service.GetPendingRequestsFor(r.Context(), providerID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "request_list_failed", "failed to list pending requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRequestsFrom(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	requesterID := r.URL.Query().Get("requesterId")
	if requesterID == "" {
		requesterID = user.EmployeeID
	}
	if requesterID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_query", "requesterId is required", middleware.GetRequestID(r.Context()))
		return
	}

	requests, err := h.Service.GetRequestsFrom(r.Context(), requesterID, r.URL.Query().Get("cycleId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "request_list_failed", "failed to list requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if err := h.Service.UpdateRequestStatus(r.Context(), requestID, payload.Status); err != nil {
		switch {
		case errors.Is(err, assignment.ErrRequestNotFound):
			api.Fail(w, http.StatusNotFound, "request_not_found", "feedback request not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, assignment.ErrInvalidStatus):
			api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown request status", middleware.GetRequestID(r.Context()))
		case errors.Is(err, assignment.ErrStatusTransition):
			api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "status_update_failed", "failed to update request status", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, map[string]any{"id": requestID, "status": payload.Status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Content string `json:"content"`
		Rating  *int   `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Content == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "response content is required", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")
	id, err := h.Service.RecordResponse(r.Context(), requestID, user.EmployeeID, payload.Content, payload.Rating)
	if err != nil {
		switch {
		case errors.Is(err, assignment.ErrRequestNotFound):
			api.Fail(w, http.StatusNotFound, "request_not_found", "feedback request not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, assignment.ErrNotRequestOwner):
			api.Fail(w, http.StatusForbidden, "forbidden", "request is assigned to a different provider", middleware.GetRequestID(r.Context()))
		case errors.Is(err, assignment.ErrAlreadyResponded):
			api.Fail(w, http.StatusConflict, "already_responded", "request already has a response", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "response_failed", "failed to record response", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Created(w, map[string]any{"id": id}, middleware.GetRequestID(r.Context()))
}
