package rankinghandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"peerpulse/internal/domain/auth"
	"peerpulse/internal/domain/ranking"
	"peerpulse/internal/transport/http/api"
	"peerpulse/internal/transport/http/middleware"
)

type Handler struct {
	Service *ranking.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *ranking.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermRankingsRecompute, h.Perms)).Post("/rankings/recompute", h.handleRecomputeAll)
	r.With(middleware.RequirePermission(auth.PermRankingsRecompute, h.Perms)).Post("/employees/{employeeID}/rankings/recompute", h.handleRecomputeOne)
	r.With(middleware.RequirePermission(auth.PermRankingsRead, h.Perms)).Get("/employees/{employeeID}/rankings", h.handleRankedPeers)
}

func (h *Handler) handleRecomputeAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.RankAllPeers(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "ranking_recompute_failed", "failed to recompute rankings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecomputeOne(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	rankings, err := h.Service.RankPeers(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "ranking_recompute_failed", "failed to recompute rankings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rankings, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRankedPeers(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	rankings, err := h.Service.RankedPeers(r.Context(), employeeID, limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "ranking_read_failed", "failed to read rankings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rankings, middleware.GetRequestID(r.Context()))
}
