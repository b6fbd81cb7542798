package utilizationhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrplan/internal/domain/capacity"
	"okrplan/internal/domain/utilization"
	"okrplan/internal/transport/http/api"
	"okrplan/internal/transport/http/middleware"
)

type Handler struct {
	Service *utilization.Service
}

func NewHandler(service *utilization.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/utilization", func(r chi.Router) {
		r.Get("/members/{memberID}", h.handleMember)
		r.Get("/teams/{team}", h.handleTeam)
	})
}

func (h *Handler) handleMember(w http.ResponseWriter, r *http.Request) {
	quarter := r.URL.Query().Get("quarter")
	summary, err := h.Service.ForMember(r.Context(), chi.URLParam(r, "memberID"), quarter)
	if errors.Is(err, capacity.ErrInvalidQuarter) {
		api.Fail(w, http.StatusBadRequest, "invalid_quarter", "quarter must look like \"Q1 2026\"", middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, utilization.ErrMemberNotFound) {
		api.Fail(w, http.StatusNotFound, "member_not_found", "team member not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "utilization_failed", "failed to compute utilization", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	quarter := r.URL.Query().Get("quarter")
	report, err := h.Service.ForTeam(r.Context(), chi.URLParam(r, "team"), quarter)
	if errors.Is(err, capacity.ErrInvalidQuarter) {
		api.Fail(w, http.StatusBadRequest, "invalid_quarter", "quarter must look like \"Q1 2026\"", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "utilization_failed", "failed to compute team utilization", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}
