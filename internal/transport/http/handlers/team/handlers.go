package teamhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"okrplan/internal/auth"
	"okrplan/internal/domain/audit"
	"okrplan/internal/domain/team"
	"okrplan/internal/transport/http/api"
	"okrplan/internal/transport/http/middleware"
	"okrplan/internal/transport/http/shared"
)

type Handler struct {
	Service *team.Service
	Audit   *audit.Service
}

func NewHandler(service *team.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/team/members", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{memberID}", h.handleGet)
		r.Patch("/{memberID}", h.handleUpdate)
		r.Delete("/{memberID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	members, err := h.Service.List(r.Context(), r.URL.Query().Get("team"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_list_failed", "failed to list team members", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, members, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	member, err := h.Service.Get(r.Context(), chi.URLParam(r, "memberID"))
	if errors.Is(err, team.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "member_not_found", "team member not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_get_failed", "failed to load team member", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, member, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if user.Role != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload team.Member
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if payload.WeeklyHours != 0 {
		v.Range("weeklyHours", payload.WeeklyHours, 1, 80, "weeklyHours must be between 1 and 80")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_create_failed", "failed to create team member", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "team.member.create", "team_member", id, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit team.member.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Name        string   `json:"name"`
		Team        string   `json:"team"`
		WeeklyHours *float64 `json:"weeklyHours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.WeeklyHours != nil {
		v := shared.NewValidator()
		v.Range("weeklyHours", *payload.WeeklyHours, 1, 80, "weeklyHours must be between 1 and 80")
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}
	}

	memberID := chi.URLParam(r, "memberID")
	err := h.Service.Update(r.Context(), memberID, payload.Name, payload.Team, payload.WeeklyHours)
	if errors.Is(err, team.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "member_not_found", "team member not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_update_failed", "failed to update team member", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "team.member.update", "team_member", memberID, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit team.member.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": memberID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if user.Role != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", middleware.GetRequestID(r.Context()))
		return
	}

	memberID := chi.URLParam(r, "memberID")
	err := h.Service.Delete(r.Context(), memberID)
	if errors.Is(err, team.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "member_not_found", "team member not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_delete_failed", "failed to delete team member", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "team.member.delete", "team_member", memberID, middleware.GetRequestID(r.Context()), nil, nil); err != nil {
		slog.Warn("audit team.member.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": memberID}, middleware.GetRequestID(r.Context()))
}
