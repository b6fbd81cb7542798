package reportshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrplan/internal/domain/capacity"
	"okrplan/internal/domain/reports"
	"okrplan/internal/transport/http/api"
	"okrplan/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/utilization", h.handleQuarter)
		r.Get("/utilization/export.csv", h.handleExportCSV)
		r.Get("/utilization/export.pdf", h.handleExportPDF)
	})
}

func (h *Handler) handleQuarter(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.QuarterUtilization(r.Context(), r.URL.Query().Get("quarter"))
	if errors.Is(err, capacity.ErrInvalidQuarter) {
		api.Fail(w, http.StatusBadRequest, "invalid_quarter", "quarter must look like \"Q1 2026\"", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build utilization report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.ExportCSV(r.Context(), r.URL.Query().Get("quarter"))
	if errors.Is(err, capacity.ErrInvalidQuarter) {
		api.Fail(w, http.StatusBadRequest, "invalid_quarter", "quarter must look like \"Q1 2026\"", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_export_failed", "failed to export report", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=utilization.csv")
	_, _ = w.Write(data)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.ExportPDF(r.Context(), r.URL.Query().Get("quarter"))
	if errors.Is(err, capacity.ErrInvalidQuarter) {
		api.Fail(w, http.StatusBadRequest, "invalid_quarter", "quarter must look like \"Q1 2026\"", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_export_failed", "failed to export report", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=utilization.pdf")
	_, _ = w.Write(data)
}
