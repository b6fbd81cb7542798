package okrhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"okrplan/internal/domain/audit"
	"okrplan/internal/domain/okr"
	"okrplan/internal/transport/http/api"
	"okrplan/internal/transport/http/middleware"
	"okrplan/internal/transport/http/shared"
)

type Handler struct {
	Service *okr.Service
	Audit   *audit.Service
}

func NewHandler(service *okr.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/goals", func(r chi.Router) {
		r.Get("/", h.handleListGoals)
		r.Post("/", h.handleCreateGoal)
		r.Get("/{goalID}", h.handleGetGoal)
		r.Patch("/{goalID}", h.handleUpdateGoal)
		r.Delete("/{goalID}", h.handleDeleteGoal)
	})
	r.Route("/key-results", func(r chi.Router) {
		r.Post("/", h.handleCreateKeyResult)
		r.Patch("/{keyResultID}", h.handleUpdateKeyResult)
		r.Delete("/{keyResultID}", h.handleDeleteKeyResult)
		r.Post("/{keyResultID}/assignees", h.handleAssign)
		r.Delete("/{keyResultID}/assignees/{memberID}", h.handleUnassign)
	})
	r.Route("/initiatives", func(r chi.Router) {
		r.Get("/", h.handleListInitiatives)
		r.Post("/", h.handleCreateInitiative)
		r.Patch("/{initiativeID}", h.handleUpdateInitiative)
		r.Delete("/{initiativeID}", h.handleDeleteInitiative)
		r.Post("/{initiativeID}/assignees", h.handleAssign)
		r.Delete("/{initiativeID}/assignees/{memberID}", h.handleUnassign)
	})
}

func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.Service.ListGoals(r.Context(), r.URL.Query().Get("quarter"), r.URL.Query().Get("status"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "goal_list_failed", "failed to list goals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, goals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goal, keyResults, err := h.Service.GetGoal(r.Context(), chi.URLParam(r, "goalID"))
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "goal_not_found", "goal not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "goal_get_failed", "failed to load goal", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"goal": goal, "keyResults": keyResults}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload okr.Goal
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Status == "" {
		payload.Status = okr.StatusDraft
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Required("quarter", payload.Quarter, "quarter is required")
	v.Enum("status", payload.Status, okr.Statuses, "unknown status")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateGoal(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "goal_create_failed", "failed to create goal", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "okr.goal.create", "goal", id, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit okr.goal.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Title   string `json:"title"`
		Quarter string `json:"quarter"`
		Status  string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Status != "" {
		v := shared.NewValidator()
		v.Enum("status", payload.Status, okr.Statuses, "unknown status")
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}
	}

	goalID := chi.URLParam(r, "goalID")
	err := h.Service.UpdateGoal(r.Context(), goalID, payload.Title, payload.Quarter, payload.Status)
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "goal_not_found", "goal not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "goal_update_failed", "failed to update goal", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "okr.goal.update", "goal", goalID, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit okr.goal.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": goalID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	goalID := chi.URLParam(r, "goalID")
	err := h.Service.DeleteGoal(r.Context(), goalID)
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "goal_not_found", "goal not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "goal_delete_failed", "failed to delete goal", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "okr.goal.delete", "goal", goalID, middleware.GetRequestID(r.Context()), nil, nil); err != nil {
		slog.Warn("audit okr.goal.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": goalID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateKeyResult(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload okr.KeyResult
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Status == "" {
		payload.Status = okr.StatusDraft
	}

	v := shared.NewValidator()
	v.Required("goalId", payload.GoalID, "goalId is required")
	v.Required("title", payload.Title, "title is required")
	v.Enum("status", payload.Status, okr.Statuses, "unknown status")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateKeyResult(r.Context(), payload)
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "goal_not_found", "goal not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "key_result_create_failed", "failed to create key result", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "okr.key_result.create", "key_result", id, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit okr.key_result.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateKeyResult(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Title        string   `json:"title"`
		Status       string   `json:"status"`
		Progress     *int     `json:"progress"`
		CurrentValue *float64 `json:"currentValue"`
		TargetValue  *float64 `json:"targetValue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if payload.Status != "" {
		v.Enum("status", payload.Status, okr.Statuses, "unknown status")
	}
	if payload.Progress != nil {
		v.Range("progress", float64(*payload.Progress), 0, 100, "progress must be between 0 and 100")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	keyResultID := chi.URLParam(r, "keyResultID")
	err := h.Service.UpdateKeyResult(r.Context(), keyResultID, payload.Title, payload.Status, payload.Progress, payload.CurrentValue, payload.TargetValue)
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "key_result_not_found", "key result not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "key_result_update_failed", "failed to update key result", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "okr.key_result.update", "key_result", keyResultID, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit okr.key_result.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": keyResultID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteKeyResult(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	keyResultID := chi.URLParam(r, "keyResultID")
	err := h.Service.DeleteKeyResult(r.Context(), keyResultID)
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "key_result_not_found", "key result not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "key_result_delete_failed", "failed to delete key result", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "okr.key_result.delete", "key_result", keyResultID, middleware.GetRequestID(r.Context()), nil, nil); err != nil {
		slog.Warn("audit okr.key_result.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": keyResultID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListInitiatives(w http.ResponseWriter, r *http.Request) {
	initiatives, err := h.Service.ListInitiatives(r.Context(),
		r.URL.Query().Get("keyResultId"),
		r.URL.Query().Get("team"),
		r.URL.Query().Get("status"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "initiative_list_failed", "failed to list initiatives", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, initiatives, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateInitiative(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload okr.Initiative
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Status == "" {
		payload.Status = okr.StatusDraft
	}

	v := shared.NewValidator()
	v.Required("keyResultId", payload.KeyResultID, "keyResultId is required")
	v.Required("name", payload.Name, "name is required")
	v.Enum("status", payload.Status, okr.Statuses, "unknown status")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateInitiative(r.Context(), payload)
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "key_result_not_found", "key result not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "initiative_create_failed", "failed to create initiative", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "okr.initiative.create", "initiative", id, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit okr.initiative.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateInitiative(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Name         string   `json:"name"`
		Status       string   `json:"status"`
		Progress     *float64 `json:"progress"`
		CurrentValue *float64 `json:"currentValue"`
		TargetValue  *float64 `json:"targetValue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if payload.Status != "" {
		v.Enum("status", payload.Status, okr.Statuses, "unknown status")
	}
	if payload.Progress != nil {
		v.Range("progress", *payload.Progress, 0, 100, "progress must be between 0 and 100")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	initiativeID := chi.URLParam(r, "initiativeID")
	err := h.Service.UpdateInitiative(r.Context(), initiativeID, payload.Name, payload.Status, payload.Progress, payload.CurrentValue, payload.TargetValue)
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "initiative_not_found", "initiative not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "initiative_update_failed", "failed to update initiative", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "okr.initiative.update", "initiative", initiativeID, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit okr.initiative.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": initiativeID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteInitiative(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	initiativeID := chi.URLParam(r, "initiativeID")
	err := h.Service.DeleteInitiative(r.Context(), initiativeID)
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "initiative_not_found", "initiative not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "initiative_delete_failed", "failed to delete initiative", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "okr.initiative.delete", "initiative", initiativeID, middleware.GetRequestID(r.Context()), nil, nil); err != nil {
		slog.Warn("audit okr.initiative.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": initiativeID}, middleware.GetRequestID(r.Context()))
}

// handleAssign serves both the initiative and key-result assignee routes; the
// URL params decide which target is set.
func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		MemberID string `json:"memberId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.MemberID == "" {
		api.Fail(w, http.StatusBadRequest, "missing_member", "memberId is required", middleware.GetRequestID(r.Context()))
		return
	}

	initiativeID := chi.URLParam(r, "initiativeID")
	keyResultID := chi.URLParam(r, "keyResultID")
	err := h.Service.AssignMember(r.Context(), payload.MemberID, initiativeID, keyResultID)
	if errors.Is(err, okr.ErrDuplicateAssignee) {
		api.Fail(w, http.StatusConflict, "already_assigned", "member already assigned", middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "target_not_found", "assignment target not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "assign_failed", "failed to assign member", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, "okr.assignee.add", "assignment", initiativeID+keyResultID, middleware.GetRequestID(r.Context()), nil, payload); err != nil {
		slog.Warn("audit okr.assignee.add failed", "err", err)
	}
	api.Created(w, map[string]string{"memberId": payload.MemberID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	memberID := chi.URLParam(r, "memberID")
	initiativeID := chi.URLParam(r, "initiativeID")
	keyResultID := chi.URLParam(r, "keyResultID")
	err := h.Service.UnassignMember(r.Context(), memberID, initiativeID, keyResultID)
	if errors.Is(err, okr.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "assignment_not_found", "assignment not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "unassign_failed", "failed to remove assignment", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"memberId": memberID}, middleware.GetRequestID(r.Context()))
}
