package okr

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"okrplan/internal/platform/querier"
)

// Engine recomputes derived progress bottom-up. It owns the cascade order so
// call sites only report which leaf changed. All recalculations are
// idempotent: with no intervening leaf change a second call stores the same
// progress and status.
type Engine struct {
	DB querier.Querier
}

func NewEngine(db querier.Querier) *Engine {
	return &Engine{DB: db}
}

// RecalcKeyResult sets a key result's progress to the rounded mean of its
// non-cancelled initiatives. With no qualifying children the key result keeps
// its own progress and stays authoritative.
func (e *Engine) RecalcKeyResult(ctx context.Context, keyResultID string) error {
	rows, err := e.DB.Query(ctx, `
    SELECT progress
    FROM initiatives
    WHERE key_result_id = $1 AND status <> $2
  `, keyResultID, StatusCancelled)
	if err != nil {
		return err
	}
	values, err := collectProgress(rows)
	if err != nil {
		return err
	}

	mean, ok := RoundedMean(values)
	if !ok {
		return nil
	}

	var status string
	if err := e.DB.QueryRow(ctx, "SELECT status FROM key_results WHERE id = $1", keyResultID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	_, err = e.DB.Exec(ctx, `
    UPDATE key_results SET progress = $1, status = $2, updated_at = now() WHERE id = $3
  `, mean, AutoCompleteStatus(status, float64(mean)), keyResultID)
	return err
}

// RecalcGoal is the same rule one level up, over non-cancelled key results.
func (e *Engine) RecalcGoal(ctx context.Context, goalID string) error {
	rows, err := e.DB.Query(ctx, `
    SELECT progress
    FROM key_results
    WHERE goal_id = $1 AND status <> $2
  `, goalID, StatusCancelled)
	if err != nil {
		return err
	}
	values, err := collectProgress(rows)
	if err != nil {
		return err
	}

	mean, ok := RoundedMean(values)
	if !ok {
		return nil
	}

	var status string
	if err := e.DB.QueryRow(ctx, "SELECT status FROM goals WHERE id = $1", goalID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	_, err = e.DB.Exec(ctx, `
    UPDATE goals SET progress = $1, status = $2, updated_at = now() WHERE id = $3
  `, mean, AutoCompleteStatus(status, float64(mean)), goalID)
	return err
}

// OnInitiativeProgressChanged cascades an initiative change through its key
// result and goal, bottom-up. Detached initiatives cascade nowhere.
func (e *Engine) OnInitiativeProgressChanged(ctx context.Context, initiativeID string) error {
	var keyResultID *string
	if err := e.DB.QueryRow(ctx, "SELECT key_result_id FROM initiatives WHERE id = $1", initiativeID).Scan(&keyResultID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if keyResultID == nil {
		return nil
	}
	return e.OnKeyResultProgressChanged(ctx, *keyResultID)
}

// OnKeyResultProgressChanged recalculates a key result and then its goal.
func (e *Engine) OnKeyResultProgressChanged(ctx context.Context, keyResultID string) error {
	if err := e.RecalcKeyResult(ctx, keyResultID); err != nil {
		return err
	}
	var goalID string
	if err := e.DB.QueryRow(ctx, "SELECT goal_id FROM key_results WHERE id = $1", keyResultID).Scan(&goalID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return e.RecalcGoal(ctx, goalID)
}

func collectProgress(rows pgx.Rows) ([]float64, error) {
	defer rows.Close()
	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
