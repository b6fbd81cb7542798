package task

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"okrplan/internal/platform/querier"
)

var ErrNotFound = errors.New("task not found")

type Service struct {
	DB querier.Querier
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db}
}

func (s *Service) Create(ctx context.Context, payload Task) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO tasks (title, goal_id, status, effort_hours, actual_hours, imported_assignees, inherited_assignees)
    VALUES ($1,NULLIF($2,'')::uuid,$3,$4,$5,$6,$7)
    RETURNING id
  `, payload.Title, payload.GoalID, payload.Status, payload.EffortHours, payload.ActualHours,
		payload.ImportedAssignees, payload.InheritedAssignees).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) Get(ctx context.Context, taskID string) (*Task, error) {
	var t Task
	err := s.DB.QueryRow(ctx, `
    SELECT id, title, COALESCE(goal_id::text, ''), status, effort_hours, actual_hours,
           COALESCE(imported_assignees, '{}'), COALESCE(inherited_assignees, '{}'),
           COALESCE(resolved_assignees, '{}'), created_at, updated_at
    FROM tasks
    WHERE id = $1
  `, taskID).Scan(&t.ID, &t.Title, &t.GoalID, &t.Status, &t.EffortHours, &t.ActualHours,
		&t.ImportedAssignees, &t.InheritedAssignees, &t.ResolvedAssignees, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_, t.AssigneeSource = EffectiveAssignees(t.ImportedAssignees, t.InheritedAssignees, t.ResolvedAssignees)
	return &t, nil
}

func (s *Service) List(ctx context.Context, goalID, status string) ([]Task, error) {
	query := `
    SELECT id, title, COALESCE(goal_id::text, ''), status, effort_hours, actual_hours,
           COALESCE(imported_assignees, '{}'), COALESCE(inherited_assignees, '{}'),
           COALESCE(resolved_assignees, '{}'), created_at, updated_at
    FROM tasks
    WHERE 1=1
  `
	var args []any
	if goalID != "" {
		args = append(args, goalID)
		query += " AND goal_id = $1"
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 1 {
			query += " AND status = $1"
		} else {
			query += " AND status = $2"
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.GoalID, &t.Status, &t.EffortHours, &t.ActualHours,
			&t.ImportedAssignees, &t.InheritedAssignees, &t.ResolvedAssignees, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		_, t.AssigneeSource = EffectiveAssignees(t.ImportedAssignees, t.InheritedAssignees, t.ResolvedAssignees)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Service) Update(ctx context.Context, taskID, title, status string, effortHours, actualHours *float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tasks
    SET title = COALESCE(NULLIF($1,''), title),
        status = COALESCE(NULLIF($2,''), status),
        effort_hours = COALESCE($3, effort_hours),
        actual_hours = COALESCE($4, actual_hours),
        updated_at = now()
    WHERE id = $5
  `, title, status, effortHours, actualHours, taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolveAssignees records a manual decision, which takes precedence over
// both imported and inherited lists from then on.
func (s *Service) ResolveAssignees(ctx context.Context, taskID string, memberIDs []string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE tasks SET resolved_assignees = $1, updated_at = now() WHERE id = $2
  `, memberIDs, taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, taskID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM tasks WHERE id = $1", taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
