package importshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okrplan/internal/auth"
	"okrplan/internal/domain/audit"
	"okrplan/internal/domain/importer"
	"okrplan/internal/transport/http/api"
	"okrplan/internal/transport/http/middleware"
	"okrplan/internal/transport/http/shared"
)

type Handler struct {
	Service *importer.Service
	Audit   *audit.Service

	// DefaultFeedURL is used when a calendar import request names no feed.
	DefaultFeedURL string
}

func NewHandler(service *importer.Service, auditSvc *audit.Service, defaultFeedURL string) *Handler {
	return &Handler{Service: service, Audit: auditSvc, DefaultFeedURL: defaultFeedURL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Post("/calendar", h.handleCalendar)
		r.Post("/bulk", h.handleBulk)
		r.Get("/matches", h.handleListMatches)
		r.Get("/matches/{matchID}", h.handleGetMatch)
		r.Post("/matches/{matchID}/resolve", h.handleResolveMatch)
	})
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if user.Role != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		FeedURL string `json:"feedUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	feedURL := payload.FeedURL
	if feedURL == "" {
		feedURL = h.DefaultFeedURL
	}
	if feedURL == "" {
		api.Fail(w, http.StatusBadRequest, "missing_feed", "feedUrl is required", middleware.GetRequestID(r.Context()))
		return
	}

	report, err := h.Service.ImportCalendar(r.Context(), feedURL)
	if errors.Is(err, importer.ErrEmptyFeed) {
		api.Fail(w, http.StatusUnprocessableEntity, "empty_feed", "calendar feed contained no events", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusBadGateway, "calendar_import_failed", "failed to import calendar feed", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "import.calendar", "calendar_feed", "", middleware.GetRequestID(r.Context()), nil, report); err != nil {
		slog.Warn("audit import.calendar failed", "err", err)
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if user.Role != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Kind   string              `json:"kind"`
		Policy string              `json:"policy"`
		Rows   []map[string]string `json:"rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Policy == "" {
		payload.Policy = importer.PolicySkip
	}

	v := shared.NewValidator()
	v.Enum("kind", payload.Kind, importer.Kinds, "unknown import kind")
	v.Enum("policy", payload.Policy, importer.Policies, "unknown duplicate policy")
	if len(payload.Rows) == 0 {
		v.Add("rows", "at least one row is required")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	report, err := h.Service.ImportRows(r.Context(), payload.Kind, payload.Rows, payload.Policy)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "bulk_import_failed", "failed to run bulk import", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "import.bulk", payload.Kind, "", middleware.GetRequestID(r.Context()), nil, report); err != nil {
		slog.Warn("audit import.bulk failed", "err", err)
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	matches, err := h.Service.ListPendingMatches(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "match_list_failed", "failed to list pending matches", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, matches, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	m, err := h.Service.GetPendingMatch(r.Context(), chi.URLParam(r, "matchID"))
	if errors.Is(err, importer.ErrMatchNotFound) {
		api.Fail(w, http.StatusNotFound, "match_not_found", "pending match not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "match_get_failed", "failed to load pending match", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, m, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResolveMatch(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	matchID := chi.URLParam(r, "matchID")
	m, err := h.Service.ResolvePendingMatch(r.Context(), matchID, payload.Action)
	switch {
	case errors.Is(err, importer.ErrInvalidAction):
		api.Fail(w, http.StatusBadRequest, "invalid_action", "action must be confirm or reject", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, importer.ErrMatchNotFound):
		api.Fail(w, http.StatusNotFound, "match_not_found", "pending match not found", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, importer.ErrMatchResolved):
		api.Fail(w, http.StatusConflict, "match_resolved", "pending match is already resolved", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "match_resolve_failed", "failed to resolve pending match", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "import.match.resolve", "pending_match", matchID, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit import.match.resolve failed", "err", err)
	}
	api.Success(w, m, middleware.GetRequestID(r.Context()))
}
