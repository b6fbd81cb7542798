package timeoffhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrplan/internal/domain/allocation"
	"okrplan/internal/domain/audit"
	"okrplan/internal/domain/timeoff"
	"okrplan/internal/transport/http/api"
	"okrplan/internal/transport/http/middleware"
	"okrplan/internal/transport/http/shared"
)

type Handler struct {
	Service     *timeoff.Service
	Allocations *allocation.Service
	Audit       *audit.Service
}

func NewHandler(service *timeoff.Service, allocations *allocation.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Allocations: allocations, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/time-off", func(r chi.Router) {
		r.Get("/", h.handleListRange)
		r.Post("/", h.handleCreate)
		r.Delete("/{entryID}", h.handleDelete)
		r.Get("/members/{memberID}", h.handleListForMember)
	})
	r.Route("/allocations", func(r chi.Router) {
		r.Get("/", h.handleListAllocations)
		r.Put("/", h.handleUpsertAllocation)
		r.Delete("/{allocationID}", h.handleDeleteAllocation)
	})
}

func (h *Handler) handleListRange(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	from, _ := v.Date("from", r.URL.Query().Get("from"))
	to, _ := v.Date("to", r.URL.Query().Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.HasIssues() {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), v.Issues())
		return
	}

	entries, err := h.Service.ListInRange(r.Context(), from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timeoff_list_failed", "failed to list time off", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListForMember(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.ListForMember(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timeoff_list_failed", "failed to list time off", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		MemberID  string  `json:"memberId"`
		Type      string  `json:"type"`
		StartDate string  `json:"startDate"`
		EndDate   string  `json:"endDate"`
		Hours     float64 `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("memberId", payload.MemberID, "memberId is required")
	v.Enum("type", payload.Type, timeoff.Types, "unknown time off type")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if payload.Hours <= 0 {
		v.Add("hours", "hours must be positive")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Create(r.Context(), timeoff.Entry{
		MemberID:  payload.MemberID,
		Type:      payload.Type,
		StartDate: start,
		EndDate:   end,
		Hours:     payload.Hours,
		Source:    timeoff.SourceManual,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timeoff_create_failed", "failed to create time off entry", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "timeoff.create", "time_off", id, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit timeoff.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	entryID := chi.URLParam(r, "entryID")
	err := h.Service.Delete(r.Context(), entryID)
	if errors.Is(err, timeoff.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "timeoff_not_found", "time off entry not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "timeoff_delete_failed", "failed to delete time off entry", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "timeoff.delete", "time_off", entryID, middleware.GetRequestID(r.Context()), nil, nil); err != nil {
		slog.Warn("audit timeoff.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": entryID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAllocations(w http.ResponseWriter, r *http.Request) {
	if memberID := r.URL.Query().Get("memberId"); memberID != "" {
		v := shared.NewValidator()
		from, _ := v.Date("from", r.URL.Query().Get("from"))
		to, _ := v.Date("to", r.URL.Query().Get("to"))
		v.DateOrder("from", from, "to", to)
		if v.HasIssues() {
			shared.FailValidation(w, middleware.GetRequestID(r.Context()), v.Issues())
			return
		}
		allocations, err := h.Allocations.ListForMember(r.Context(), memberID, from, to)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "allocation_list_failed", "failed to list allocations", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, allocations, middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	week, ok := v.Date("week", r.URL.Query().Get("week"))
	if !ok {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), v.Issues())
		return
	}
	allocations, err := h.Allocations.ListForWeek(r.Context(), week)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "allocation_list_failed", "failed to list allocations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, allocations, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsertAllocation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		MemberID     string  `json:"memberId"`
		InitiativeID string  `json:"initiativeId"`
		Week         string  `json:"week"`
		Percentage   float64 `json:"percentage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("memberId", payload.MemberID, "memberId is required")
	v.Required("initiativeId", payload.InitiativeID, "initiativeId is required")
	week, _ := v.Date("week", payload.Week)
	v.Range("percentage", payload.Percentage, 0, 100, "percentage must be between 0 and 100")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Allocations.Upsert(r.Context(), payload.MemberID, payload.InitiativeID, week, payload.Percentage)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "allocation_upsert_failed", "failed to save allocation", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "allocation.upsert", "allocation", id, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit allocation.upsert failed", "err", err)
	}
	api.Success(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteAllocation(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	allocationID := chi.URLParam(r, "allocationID")
	if err := h.Allocations.Delete(r.Context(), allocationID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "allocation_delete_failed", "failed to delete allocation", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"id": allocationID}, middleware.GetRequestID(r.Context()))
}
