package cycleshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peerpulse/internal/domain/assignment"
	"peerpulse/internal/domain/audit"
	"peerpulse/internal/domain/auth"
	"peerpulse/internal/domain/cycles"
	"peerpulse/internal/domain/reports"
	"peerpulse/internal/transport/http/api"
	"peerpulse/internal/transport/http/middleware"
	"peerpulse/internal/transport/http/shared"
)

type Handler struct {
	Cycles     *cycles.Service
	Assignment *assignment.Service
	Reports    *reports.Service
	Audit      *audit.Service
	Perms      middleware.PermissionStore
}

func NewHandler(cycleSvc *cycles.Service, assignSvc *assignment.Service, reportSvc *reports.Service, auditSvc *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Cycles: cycleSvc, Assignment: assignSvc, Reports: reportSvc, Audit: auditSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cycles", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCyclesManage, h.Perms)).Post("/", h.handleCreateCycle)
		r.With(middleware.RequirePermission(auth.PermFeedbackRead, h.Perms)).Get("/", h.handleListCycles)
		r.With(middleware.RequirePermission(auth.PermFeedbackRead, h.Perms)).Get("/{cycleID}", h.handleGetCycle)
		r.With(middleware.RequirePermission(auth.PermFeedbackRead, h.Perms)).Get("/{cycleID}/stats", h.handleCycleStats)
		r.With(middleware.RequirePermission(auth.PermCyclesManage, h.Perms)).Post("/{cycleID}/assign", h.handleAssign)
		r.With(middleware.RequirePermission(auth.PermCyclesManage, h.Perms)).Post("/{cycleID}/complete", h.handleComplete)
		r.With(middleware.RequirePermission(auth.PermCyclesManage, h.Perms)).Post("/{cycleID}/archive", h.handleArchive)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/{cycleID}/report.pdf", h.handleReportPDF)
	})
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Name      string             `json:"name"`
		Type      string             `json:"type"`
		StartDate string             `json:"startDate"`
		EndDate   string             `json:"endDate"`
		Config    cycles.CycleConfig `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "cycle name is required")
	v.Enum("type", payload.Type, cycles.KnownTypes, "must be one of peer, 360, pulse, custom")
	startDate, startOK := v.Date("startDate", payload.StartDate)
	endDate, endOK := v.Date("endDate", payload.EndDate)
	if startOK && endOK {
		v.DateOrder("startDate", startDate, "endDate", endDate)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Cycles.CreateCycle(r.Context(), payload.Name, payload.Type, startDate, endDate, payload.Config, user.UserID)
	if err != nil {
		if errors.Is(err, cycles.ErrInvalidCycleType) {
			api.Fail(w, http.StatusBadRequest, "invalid_cycle_type", "unknown cycle type", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "cycle_create_failed", "failed to create cycle", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "cycles.create", "cycle", id, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit cycles.create failed", "err", err)
	}
	api.Created(w, map[string]any{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = cycles.StatusActive
	}
	list, err := h.Cycles.CyclesByStatus(r.Context(), status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "failed to list cycles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.Cycles.GetCycle(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		if errors.Is(err, cycles.ErrCycleNotFound) {
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "feedback cycle not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "cycle_read_failed", "failed to read cycle", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCycleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Cycles.CycleStats(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		if errors.Is(err, cycles.ErrCycleNotFound) {
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "feedback cycle not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "cycle_stats_failed", "failed to compute cycle stats", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		PeersPerEmployee int  `json:"peersPerEmployee"`
		Include360       bool `json:"include360"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
	}

	cycleID := chi.URLParam(r, "cycleID")
	summary, err := h.Assignment.AssignFeedbackRequests(r.Context(), cycleID, payload.PeersPerEmployee, payload.Include360)
	if err != nil {
		if errors.Is(err, cycles.ErrCycleNotFound) {
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "feedback cycle not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "assignment_failed", "failed to assign feedback requests", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "cycles.assign", "cycle", cycleID, middleware.GetRequestID(r.Context()), summary); err != nil {
		slog.Warn("audit cycles.assign failed", "err", err)
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "cycles.complete", h.Cycles.CompleteCycle)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "cycles.archive", h.Cycles.ArchiveCycle)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, action string, transition func(ctx context.Context, cycleID string) error) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	cycleID := chi.URLParam(r, "cycleID")
	if err := transition(r.Context(), cycleID); err != nil {
		switch {
		case errors.Is(err, cycles.ErrCycleNotFound):
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "feedback cycle not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, cycles.ErrInvalidTransition):
			api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "cycle_transition_failed", "failed to update cycle status", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, action, "cycle", cycleID, middleware.GetRequestID(r.Context()), nil); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
	api.Success(w, map[string]any{"id": cycleID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "cycleID")
	pdfBytes, err := h.Reports.CycleSummaryPDF(r.Context(), cycleID)
	if err != nil {
		if errors.Is(err, cycles.ErrCycleNotFound) {
			api.Fail(w, http.StatusNotFound, "cycle_not_found", "feedback cycle not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to generate cycle report", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=cycle-"+cycleID+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}
