package taskhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"okrplan/internal/domain/audit"
	"okrplan/internal/domain/task"
	"okrplan/internal/transport/http/api"
	"okrplan/internal/transport/http/middleware"
	"okrplan/internal/transport/http/shared"
)

type Handler struct {
	Service *task.Service
	Audit   *audit.Service
}

func NewHandler(service *task.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{taskID}", h.handleGet)
		r.Patch("/{taskID}", h.handleUpdate)
		r.Delete("/{taskID}", h.handleDelete)
		r.Post("/{taskID}/assignees/resolve", h.handleResolveAssignees)
	})
}

var statuses = []string{task.StatusTodo, task.StatusInProgress, task.StatusDone}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Service.List(r.Context(), r.URL.Query().Get("goalId"), r.URL.Query().Get("status"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_list_failed", "failed to list tasks", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, tasks, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.Service.Get(r.Context(), chi.URLParam(r, "taskID"))
	if errors.Is(err, task.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_get_failed", "failed to load task", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, t, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload task.Task
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Status == "" {
		payload.Status = task.StatusTodo
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Enum("status", payload.Status, statuses, "unknown status")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_create_failed", "failed to create task", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "task.create", "task", id, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit task.create failed", "err", err)
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
		Title       string   `json:"title"`
		Status      string   `json:"status"`
		EffortHours *float64 `json:"effortHours"`
		ActualHours *float64 `json:"actualHours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Status != "" {
		v := shared.NewValidator()
		v.Enum("status", payload.Status, statuses, "unknown status")
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}
	}

	taskID := chi.URLParam(r, "taskID")
	err := h.Service.Update(r.Context(), taskID, payload.Title, payload.Status, payload.EffortHours, payload.ActualHours)
	if errors.Is(err, task.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_update_failed", "failed to update task", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "task.update", "task", taskID, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit task.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": taskID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResolveAssignees(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		MemberIDs []string `json:"memberIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	taskID := chi.URLParam(r, "taskID")
	err := h.Service.ResolveAssignees(r.Context(), taskID, payload.MemberIDs)
	if errors.Is(err, task.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_resolve_failed", "failed to resolve assignees", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "task.assignees.resolve", "task", taskID, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit task.assignees.resolve failed", "err", err)
	}
	api.Success(w, map[string]string{"id": taskID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	taskID := chi.URLParam(r, "taskID")
	err := h.Service.Delete(r.Context(), taskID)
	if errors.Is(err, task.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_delete_failed", "failed to delete task", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "task.delete", "task", taskID, middleware.GetRequestID(r.Context()), nil, nil); err != nil {
		slog.Warn("audit task.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": taskID}, middleware.GetRequestID(r.Context()))
}
