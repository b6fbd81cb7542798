package checkin

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"okrplan/internal/domain/capacity"
	"okrplan/internal/domain/okr"
	"okrplan/internal/platform/querier"
)

type Service struct {
	DB querier.Beginner
}

func NewService(db querier.Beginner) *Service {
	return &Service{DB: db}
}

// SaveDraft upserts the member's check-in for the week and replaces its
// items. No attribution happens here; progress only moves on submit. Every
// item is validated up front and the replace runs in one transaction, so a
// rejected draft leaves the stored one untouched.
func (s *Service) SaveDraft(ctx context.Context, memberID string, week time.Time, mood string, items []Item) (string, error) {
	weekStart := capacity.WeekStart(week)

	for _, item := range items {
		if err := validateItemTarget(item); err != nil {
			return "", err
		}
	}

	var id, status string
	err := s.DB.QueryRow(ctx, `
    SELECT id, status FROM weekly_checkins WHERE member_id = $1 AND week_start = $2
  `, memberID, weekStart).Scan(&id, &status)
	exists := true
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		exists = false
	case err != nil:
		return "", err
	case status == StatusSubmitted:
		return "", ErrAlreadySubmitted
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if exists {
		if _, err := tx.Exec(ctx, `
      UPDATE weekly_checkins SET total_allocation_pct = $1, mood = $2 WHERE id = $3
    `, TotalAllocation(items), mood, id); err != nil {
			return "", err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM weekly_checkin_items WHERE checkin_id = $1", id); err != nil {
			return "", err
		}
	} else {
		if err := tx.QueryRow(ctx, `
      INSERT INTO weekly_checkins (member_id, week_start, status, total_allocation_pct, mood)
      VALUES ($1,$2,$3,$4,$5)
      RETURNING id
    `, memberID, weekStart, StatusDraft, TotalAllocation(items), mood).Scan(&id); err != nil {
			return "", err
		}
	}

	for _, item := range items {
		if _, err := tx.Exec(ctx, `
      INSERT INTO weekly_checkin_items
        (checkin_id, kind, initiative_id, key_result_id, note, time_allocation_pct, progress_contribution_pct, current_value_increment)
      VALUES ($1,$2,NULLIF($3,'')::uuid,NULLIF($4,'')::uuid,$5,$6,$7,$8)
    `, id, item.Kind, item.InitiativeID, item.KeyResultID, item.Note,
			item.TimeAllocationPct, item.ProgressContributionPct, item.CurrentValueIncrement); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) Get(ctx context.Context, checkinID string) (*Checkin, error) {
	var c Checkin
	err := s.DB.QueryRow(ctx, `
    SELECT id, member_id, week_start, status, total_allocation_pct, COALESCE(mood, ''), submitted_at, created_at
    FROM weekly_checkins
    WHERE id = $1
  `, checkinID).Scan(&c.ID, &c.MemberID, &c.WeekStart, &c.Status, &c.TotalAllocationPct, &c.Mood, &c.SubmittedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items, err := s.items(ctx, s.DB, checkinID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (s *Service) ListForWeek(ctx context.Context, week time.Time) ([]Checkin, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, member_id, week_start, status, total_allocation_pct, COALESCE(mood, ''), submitted_at, created_at
    FROM weekly_checkins
    WHERE week_start = $1
    ORDER BY created_at
  `, capacity.WeekStart(week))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Checkin
	for rows.Next() {
		var c Checkin
		if err := rows.Scan(&c.ID, &c.MemberID, &c.WeekStart, &c.Status, &c.TotalAllocationPct, &c.Mood, &c.SubmittedAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Submit finalizes a draft check-in and runs allocation attribution inside a
// single transaction: ad-hoc items first materialize initiatives under the
// sentinel key result, then value increments apply, then percentage
// contributions on top of them, and finally the cascade recomputes every
// affected parent bottom-up.
func (s *Service) Submit(ctx context.Context, checkinID string) (*Result, error) {
	c, err := s.Get(ctx, checkinID)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusDraft {
		return nil, ErrAlreadySubmitted
	}
	if TotalAllocation(c.Items) > AllocationCeiling {
		return nil, ErrAllocationCeiling
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := s.attribute(ctx, tx, c)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE weekly_checkins SET status = $1, submitted_at = now() WHERE id = $2
  `, StatusSubmitted, checkinID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) attribute(ctx context.Context, tx pgx.Tx, c *Checkin) (*Result, error) {
	result := &Result{CheckinID: c.ID}
	engine := okr.NewEngine(tx)

	items := make([]Item, len(c.Items))
	copy(items, c.Items)

	// Ad-hoc work gets a real initiative before any attribution math runs.
	for i := range items {
		if items[i].Kind != KindBAU && items[i].Kind != KindEvent {
			continue
		}
		initiativeID, err := s.createAdHocInitiative(ctx, tx, c, items[i])
		if err != nil {
			return nil, err
		}
		items[i].InitiativeID = initiativeID
		items[i].KeyResultID = ""
		result.CreatedInitiativeIDs = append(result.CreatedInitiativeIDs, initiativeID)
	}

	// Pass one: value-tracked increments. These run before percentage
	// contributions; when an item carries both, the percentage applies on top
	// of the progress this pass just stored.
	for _, item := range items {
		if item.CurrentValueIncrement <= 0 {
			continue
		}
		if err := s.applyValueIncrement(ctx, tx, item); err != nil {
			return nil, err
		}
	}

	// Pass two: share-weighted percentage contributions.
	for _, item := range items {
		if item.ProgressContributionPct <= 0 {
			continue
		}
		if err := s.applyContribution(ctx, tx, item); err != nil {
			return nil, err
		}
	}

	// Collect affected parents, dedupe, cascade bottom-up.
	keyResultSet := map[string]bool{}
	goalSet := map[string]bool{}
	for _, item := range items {
		if item.InitiativeID != "" {
			var krID *string
			if err := tx.QueryRow(ctx, "SELECT key_result_id FROM initiatives WHERE id = $1", item.InitiativeID).Scan(&krID); err != nil {
				return nil, err
			}
			if krID != nil {
				keyResultSet[*krID] = true
			}
		}
		if item.KeyResultID != "" {
			keyResultSet[item.KeyResultID] = true
		}
	}
	for krID := range keyResultSet {
		if err := engine.RecalcKeyResult(ctx, krID); err != nil {
			return nil, err
		}
		var goalID string
		if err := tx.QueryRow(ctx, "SELECT goal_id FROM key_results WHERE id = $1", krID).Scan(&goalID); err != nil {
			return nil, err
		}
		goalSet[goalID] = true
		result.AffectedKeyResultIDs = append(result.AffectedKeyResultIDs, krID)
	}
	for goalID := range goalSet {
		if err := engine.RecalcGoal(ctx, goalID); err != nil {
			return nil, err
		}
		result.AffectedGoalIDs = append(result.AffectedGoalIDs, goalID)
	}

	return result, nil
}

// applyValueIncrement advances whichever value-tracked target the item names,
// initiative or key result. Key result progress is stored as an integer;
// the ratio math already rounds to whole percent.
func (s *Service) applyValueIncrement(ctx context.Context, tx pgx.Tx, item Item) error {
	table, targetID := "initiatives", item.InitiativeID
	if targetID == "" {
		table, targetID = "key_results", item.KeyResultID
	}
	if targetID == "" {
		return nil
	}

	var currentValue, targetValue *float64
	var status string
	err := tx.QueryRow(ctx,
		"SELECT current_value, target_value, status FROM "+table+" WHERE id = $1",
		targetID).Scan(&currentValue, &targetValue, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if targetValue == nil || *targetValue <= 0 {
		// not value-tracked: the increment has nothing to apply against
		return nil
	}
	base := 0.0
	if currentValue != nil {
		base = *currentValue
	}
	newValue, newProgress := ApplyValueIncrement(base, item.CurrentValueIncrement, *targetValue)
	if table == "key_results" {
		_, err = tx.Exec(ctx, `
      UPDATE key_results
      SET current_value = $1, progress = $2, status = $3, updated_at = now()
      WHERE id = $4
    `, newValue, int(newProgress), okr.AutoCompleteStatus(status, newProgress), targetID)
		return err
	}
	_, err = tx.Exec(ctx, `
    UPDATE initiatives
    SET current_value = $1, progress = $2, status = $3, updated_at = now()
    WHERE id = $4
  `, newValue, newProgress, okr.AutoCompleteStatus(status, newProgress), targetID)
	return err
}

func (s *Service) applyContribution(ctx context.Context, tx pgx.Tx, item Item) error {
	var table, idColumn, assigneeTable, assigneeColumn string
	var targetID string
	switch {
	case item.InitiativeID != "":
		table, idColumn, targetID = "initiatives", "id", item.InitiativeID
		assigneeTable, assigneeColumn = "initiative_assignees", "initiative_id"
	case item.KeyResultID != "":
		table, idColumn, targetID = "key_results", "id", item.KeyResultID
		assigneeTable, assigneeColumn = "key_result_assignees", "key_result_id"
	default:
		return nil
	}

	var assigneeCount int
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(1) FROM "+assigneeTable+" WHERE "+assigneeColumn+" = $1",
		targetID).Scan(&assigneeCount); err != nil {
		return err
	}

	var progress float64
	var status string
	err := tx.QueryRow(ctx,
		"SELECT progress, status FROM "+table+" WHERE "+idColumn+" = $1",
		targetID).Scan(&progress, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	newProgress := ApplyContribution(progress, ScaledContribution(item.ProgressContributionPct, assigneeCount))
	_, err = tx.Exec(ctx,
		"UPDATE "+table+" SET progress = $1, status = $2, updated_at = now() WHERE "+idColumn+" = $3",
		newProgress, okr.AutoCompleteStatus(status, newProgress), targetID)
	return err
}

func (s *Service) createAdHocInitiative(ctx context.Context, tx pgx.Tx, c *Checkin, item Item) (string, error) {
	var sentinelKR string
	err := tx.QueryRow(ctx, `
    SELECT id FROM key_results WHERE LOWER(title) LIKE 'business as usual%' ORDER BY created_at LIMIT 1
  `).Scan(&sentinelKR)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoSentinelTarget
		}
		return "", err
	}

	name := item.Note
	if name == "" {
		name = "Ad-hoc work"
	}

	var initiativeID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO initiatives (key_result_id, name, status, progress, category)
    VALUES ($1,$2,$3,0,$4)
    RETURNING id
  `, sentinelKR, name, okr.StatusInProgress, item.Kind).Scan(&initiativeID); err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO initiative_assignees (initiative_id, member_id) VALUES ($1, $2)
  `, initiativeID, c.MemberID); err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO time_entries (member_id, initiative_id, week_start, allocation_pct, note)
    VALUES ($1,$2,$3,$4,$5)
  `, c.MemberID, initiativeID, c.WeekStart, item.TimeAllocationPct, item.Note); err != nil {
		return "", err
	}

	return initiativeID, nil
}

func (s *Service) items(ctx context.Context, db querier.Querier, checkinID string) ([]Item, error) {
	rows, err := db.Query(ctx, `
    SELECT id, checkin_id, kind, COALESCE(initiative_id::text, ''), COALESCE(key_result_id::text, ''),
           COALESCE(note, ''), time_allocation_pct, progress_contribution_pct, current_value_increment
    FROM weekly_checkin_items
    WHERE checkin_id = $1
    ORDER BY id
  `, checkinID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.CheckinID, &item.Kind, &item.InitiativeID, &item.KeyResultID,
			&item.Note, &item.TimeAllocationPct, &item.ProgressContributionPct, &item.CurrentValueIncrement); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func validateItemTarget(item Item) error {
	switch item.Kind {
	case KindBAU, KindEvent:
		return nil
	case KindInitiative:
		if item.InitiativeID == "" || item.KeyResultID != "" {
			return ErrAmbiguousTarget
		}
	case KindKeyResult:
		if item.KeyResultID == "" || item.InitiativeID != "" {
			return ErrAmbiguousTarget
		}
	default:
		return ErrAmbiguousTarget
	}
	return nil
}
