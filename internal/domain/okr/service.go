package okr

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	Store  *Store
	Engine *Engine
}

func NewService(store *Store) *Service {
	return &Service{Store: store, Engine: NewEngine(store.DB)}
}

func (s *Service) CreateGoal(ctx context.Context, payload Goal) (string, error) {
	var id string
	if err := s.Store.DB.QueryRow(ctx, `
    INSERT INTO goals (title, quarter, status, progress, owner_id)
    VALUES ($1,$2,$3,$4,NULLIF($5,'')::uuid)
    RETURNING id
  `, payload.Title, payload.Quarter, payload.Status, payload.Progress, payload.OwnerID).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) ListGoals(ctx context.Context, quarter, status string) ([]Goal, error) {
	query := `
    SELECT id, title, quarter, status, progress, COALESCE(owner_id::text, ''), created_at, updated_at
    FROM goals
    WHERE 1=1
  `
	var args []any
	if quarter != "" {
		args = append(args, quarter)
		query += " AND quarter = $" + strconv.Itoa(len(args))
	}
	if status != "" {
		args = append(args, status)
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.Store.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.Title, &g.Quarter, &g.Status, &g.Progress, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Service) GetGoal(ctx context.Context, goalID string) (*Goal, []KeyResult, error) {
	var g Goal
	if err := s.Store.DB.QueryRow(ctx, `
    SELECT id, title, quarter, status, progress, COALESCE(owner_id::text, ''), created_at, updated_at
    FROM goals
    WHERE id = $1
  `, goalID).Scan(&g.ID, &g.Title, &g.Quarter, &g.Status, &g.Progress, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	rows, err := s.Store.DB.Query(ctx, `
    SELECT id, goal_id, title, current_value, target_value, progress, status, created_at, updated_at
    FROM key_results
    WHERE goal_id = $1
    ORDER BY created_at
  `, goalID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var keyResults []KeyResult
	for rows.Next() {
		var kr KeyResult
		if err := rows.Scan(&kr.ID, &kr.GoalID, &kr.Title, &kr.CurrentValue, &kr.TargetValue, &kr.Progress, &kr.Status, &kr.CreatedAt, &kr.UpdatedAt); err != nil {
			return nil, nil, err
		}
		keyResults = append(keyResults, kr)
	}
	return &g, keyResults, rows.Err()
}

// UpdateGoal changes descriptive fields. Progress is not accepted here: once a
// goal has key results its progress is derived, and the cascade re-derives it
// after status changes (a cancelled key result leaving the average, for one).
func (s *Service) UpdateGoal(ctx context.Context, goalID, title, quarter, status string) error {
	tag, err := s.Store.DB.Exec(ctx, `
    UPDATE goals
    SET title = COALESCE(NULLIF($1,''), title),
        quarter = COALESCE(NULLIF($2,''), quarter),
        status = COALESCE(NULLIF($3,''), status),
        updated_at = now()
    WHERE id = $4
  `, title, quarter, status, goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return s.Engine.RecalcGoal(ctx, goalID)
}

func (s *Service) DeleteGoal(ctx context.Context, goalID string) error {
	tag, err := s.Store.DB.Exec(ctx, "DELETE FROM goals WHERE id = $1", goalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) CreateKeyResult(ctx context.Context, payload KeyResult) (string, error) {
	var id string
	if err := s.Store.DB.QueryRow(ctx, `
    INSERT INTO key_results (goal_id, title, current_value, target_value, progress, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, payload.GoalID, payload.Title, payload.CurrentValue, payload.TargetValue, payload.Progress, payload.Status).Scan(&id); err != nil {
		return "", err
	}
	return id, s.Engine.RecalcGoal(ctx, payload.GoalID)
}

// UpdateKeyResult sets externally reported progress. The value only survives
// while the key result has no non-cancelled initiatives; afterwards the
// cascade overwrites it with the derived mean.
func (s *Service) UpdateKeyResult(ctx context.Context, keyResultID string, title, status string, progress *int, currentValue, targetValue *float64) error {
	tag, err := s.Store.DB.Exec(ctx, `
    UPDATE key_results
    SET title = COALESCE(NULLIF($1,''), title),
        status = COALESCE(NULLIF($2,''), status),
        progress = COALESCE($3, progress),
        current_value = COALESCE($4, current_value),
        target_value = COALESCE($5, target_value),
        updated_at = now()
    WHERE id = $6
  `, title, status, progress, currentValue, targetValue, keyResultID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return s.Engine.OnKeyResultProgressChanged(ctx, keyResultID)
}

func (s *Service) DeleteKeyResult(ctx context.Context, keyResultID string) error {
	var goalID string
	if err := s.Store.DB.QueryRow(ctx, "SELECT goal_id FROM key_results WHERE id = $1", keyResultID).Scan(&goalID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.Store.DB.Exec(ctx, "DELETE FROM key_results WHERE id = $1", keyResultID); err != nil {
		return err
	}
	return s.Engine.RecalcGoal(ctx, goalID)
}

func (s *Service) ListInitiatives(ctx context.Context, keyResultID, team, status string) ([]Initiative, error) {
	query := `
    SELECT id, COALESCE(key_result_id::text, ''), name, status, progress, current_value, target_value,
           COALESCE(owner_id::text, ''), COALESCE(team, ''), COALESCE(category, ''), created_at, updated_at
    FROM initiatives
    WHERE 1=1
  `
	var args []any
	if keyResultID != "" {
		args = append(args, keyResultID)
		query += " AND key_result_id = $" + strconv.Itoa(len(args))
	}
	if team != "" {
		args = append(args, team)
		query += " AND team = $" + strconv.Itoa(len(args))
	}
	if status != "" {
		args = append(args, status)
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.Store.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var initiatives []Initiative
	for rows.Next() {
		var in Initiative
		if err := rows.Scan(&in.ID, &in.KeyResultID, &in.Name, &in.Status, &in.Progress, &in.CurrentValue, &in.TargetValue, &in.OwnerID, &in.Team, &in.Category, &in.CreatedAt, &in.UpdatedAt); err != nil {
			return nil, err
		}
		initiatives = append(initiatives, in)
	}
	return initiatives, rows.Err()
}

func (s *Service) CreateInitiative(ctx context.Context, payload Initiative) (string, error) {
	var id string
	if err := s.Store.DB.QueryRow(ctx, `
    INSERT INTO initiatives (key_result_id, name, status, progress, current_value, target_value, owner_id, team, category)
    VALUES (NULLIF($1,'')::uuid,$2,$3,$4,$5,$6,NULLIF($7,'')::uuid,$8,$9)
    RETURNING id
  `, payload.KeyResultID, payload.Name, payload.Status, payload.Progress, payload.CurrentValue, payload.TargetValue, payload.OwnerID, payload.Team, payload.Category).Scan(&id); err != nil {
		return "", err
	}
	return id, s.Engine.OnInitiativeProgressChanged(ctx, id)
}

func (s *Service) UpdateInitiative(ctx context.Context, initiativeID string, name, status string, progress, currentValue, targetValue *float64) error {
	if progress != nil {
		clamped := ClampProgress(*progress)
		progress = &clamped
	}
	tag, err := s.Store.DB.Exec(ctx, `
    UPDATE initiatives
    SET name = COALESCE(NULLIF($1,''), name),
        status = COALESCE(NULLIF($2,''), status),
        progress = COALESCE($3, progress),
        current_value = COALESCE($4, current_value),
        target_value = COALESCE($5, target_value),
        updated_at = now()
    WHERE id = $6
  `, name, status, progress, currentValue, targetValue, initiativeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if progress != nil {
		var current string
		if err := s.Store.DB.QueryRow(ctx, "SELECT status FROM initiatives WHERE id = $1", initiativeID).Scan(&current); err != nil {
			return err
		}
		if next := AutoCompleteStatus(current, *progress); next != current {
			if _, err := s.Store.DB.Exec(ctx, "UPDATE initiatives SET status = $1 WHERE id = $2", next, initiativeID); err != nil {
				return err
			}
		}
	}
	return s.Engine.OnInitiativeProgressChanged(ctx, initiativeID)
}

func (s *Service) DeleteInitiative(ctx context.Context, initiativeID string) error {
	var keyResultID *string
	if err := s.Store.DB.QueryRow(ctx, "SELECT key_result_id FROM initiatives WHERE id = $1", initiativeID).Scan(&keyResultID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.Store.DB.Exec(ctx, "DELETE FROM initiatives WHERE id = $1", initiativeID); err != nil {
		return err
	}
	if keyResultID != nil {
		return s.Engine.OnKeyResultProgressChanged(ctx, *keyResultID)
	}
	return nil
}

// AssignMember links a member to an initiative or key result. Exactly one of
// the two target ids must be set.
func (s *Service) AssignMember(ctx context.Context, memberID, initiativeID, keyResultID string) error {
	var table, column, targetID string
	switch {
	case initiativeID != "":
		table, column, targetID = "initiative_assignees", "initiative_id", initiativeID
	case keyResultID != "":
		table, column, targetID = "key_result_assignees", "key_result_id", keyResultID
	default:
		return ErrNotFound
	}

	var count int
	if err := s.Store.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM "+table+" WHERE "+column+" = $1 AND member_id = $2",
		targetID, memberID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateAssignee
	}

	_, err := s.Store.DB.Exec(ctx,
		"INSERT INTO "+table+" ("+column+", member_id) VALUES ($1, $2)",
		targetID, memberID)
	return err
}

func (s *Service) UnassignMember(ctx context.Context, memberID, initiativeID, keyResultID string) error {
	switch {
	case initiativeID != "":
		_, err := s.Store.DB.Exec(ctx, "DELETE FROM initiative_assignees WHERE initiative_id = $1 AND member_id = $2", initiativeID, memberID)
		return err
	case keyResultID != "":
		_, err := s.Store.DB.Exec(ctx, "DELETE FROM key_result_assignees WHERE key_result_id = $1 AND member_id = $2", keyResultID, memberID)
		return err
	}
	return ErrNotFound
}
