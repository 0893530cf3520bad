package orghandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peerpulse/internal/domain/auth"
	"peerpulse/internal/domain/org"
	"peerpulse/internal/transport/http/api"
	"peerpulse/internal/transport/http/middleware"
	"peerpulse/internal/transport/http/shared"
)

type Handler struct {
	Service *org.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *org.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermOrgRead, h.Perms)).Get("/{employeeID}", h.handleGetEmployee)
		r.With(middleware.RequirePermission(auth.PermOrgSync, h.Perms)).Post("/sync", h.handleDirectorySync)
	})
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 100, 500)
	employees, err := h.Service.ListAll(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	employee, err := h.Service.GetEmployee(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employee, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDirectorySync(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Entries []org.DirectoryEntry `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.Entries) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "entries are required", middleware.GetRequestID(r.Context()))
		return
	}

	upserted, err := h.Service.SyncDirectory(r.Context(), payload.Entries)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "directory_sync_failed", "failed to apply directory sync", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"upserted": upserted}, middleware.GetRequestID(r.Context()))
}
