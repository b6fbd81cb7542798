package checkinhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"okrplan/internal/domain/audit"
	"okrplan/internal/domain/checkin"
	"okrplan/internal/transport/http/api"
	"okrplan/internal/transport/http/middleware"
	"okrplan/internal/transport/http/shared"
)

type Handler struct {
	Service *checkin.Service
	Audit   *audit.Service
}

func NewHandler(service *checkin.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/checkins", func(r chi.Router) {
		r.Get("/", h.handleListForWeek)
		r.Post("/", h.handleSaveDraft)
		r.Get("/{checkinID}", h.handleGet)
		r.Post("/{checkinID}/submit", h.handleSubmit)
	})
}

func (h *Handler) handleListForWeek(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	week, ok := v.Date("week", r.URL.Query().Get("week"))
	if !ok {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), v.Issues())
		return
	}

	checkins, err := h.Service.ListForWeek(r.Context(), week)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "checkin_list_failed", "failed to list check-ins", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, checkins, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "checkinID"))
	if errors.Is(err, checkin.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "checkin_not_found", "check-in not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "checkin_get_failed", "failed to load check-in", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		MemberID string         `json:"memberId"`
		Week     string         `json:"week"`
		Mood     string         `json:"mood"`
		Items    []checkin.Item `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("memberId", payload.MemberID, "memberId is required")
	week, _ := v.Date("week", payload.Week)
	kinds := []string{checkin.KindInitiative, checkin.KindKeyResult, checkin.KindBAU, checkin.KindEvent}
	for i, item := range payload.Items {
		field := "items[" + strconv.Itoa(i) + "]"
		v.Enum(field+".kind", item.Kind, kinds, "unknown item kind")
		v.Range(field+".timeAllocationPct", item.TimeAllocationPct, 0, 100, "timeAllocationPct must be between 0 and 100")
		v.Range(field+".progressContributionPct", item.ProgressContributionPct, 0, 100, "progressContributionPct must be between 0 and 100")
		switch item.Kind {
		case checkin.KindInitiative:
			if item.InitiativeID == "" {
				v.Add(field+".initiativeId", "initiative items require initiativeId")
			}
		case checkin.KindKeyResult:
			if item.KeyResultID == "" {
				v.Add(field+".keyResultId", "key result items require keyResultId")
			}
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.SaveDraft(r.Context(), payload.MemberID, week, payload.Mood, payload.Items)
	if errors.Is(err, checkin.ErrAlreadySubmitted) {
		api.Fail(w, http.StatusConflict, "checkin_submitted", "check-in for that week is already submitted", middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, checkin.ErrAmbiguousTarget) {
		api.Fail(w, http.StatusUnprocessableEntity, "ambiguous_target", "each item must target exactly one of initiative or key result", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "checkin_save_failed", "failed to save check-in draft", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "checkin.draft.save", "checkin", id, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit checkin.draft.save failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	checkinID := chi.URLParam(r, "checkinID")
	result, err := h.Service.Submit(r.Context(), checkinID)
	switch {
	case errors.Is(err, checkin.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "checkin_not_found", "check-in not found", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, checkin.ErrAlreadySubmitted):
		api.Fail(w, http.StatusConflict, "checkin_submitted", "check-in is already submitted", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, checkin.ErrAllocationCeiling):
		api.Fail(w, http.StatusUnprocessableEntity, "allocation_ceiling", "total allocation exceeds the weekly ceiling", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, checkin.ErrAmbiguousTarget):
		api.Fail(w, http.StatusUnprocessableEntity, "ambiguous_target", "each item must target exactly one of initiative or key result", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "checkin_submit_failed", "failed to submit check-in", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "checkin.submit", "checkin", checkinID, middleware.GetRequestID(r.Context()), nil, result); err != nil {
		slog.Warn("audit checkin.submit failed", "err", err)
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}
