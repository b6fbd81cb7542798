package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"okrplan/internal/domain/match"
	"okrplan/internal/domain/okr"
)

// Classify maps a title comparison to a match class. Only a title equal to
// the existing one after normalization is a duplicate; a perfect similarity
// score over different words is merely similar. Scores below the similar
// threshold are not a match at all.
func Classify(exactTitle bool, score int) string {
	switch {
	case exactTitle:
		return ClassDuplicate
	case score >= match.TitleSimilarThreshold:
		return ClassSimilar
	default:
		return ""
	}
}

// ImportRows bulk-imports rows of one entity kind. Each row runs in its own
// transaction so one bad row never rolls back its neighbours: failures land
// in the report's error list and processing continues.
func (s *Service) ImportRows(ctx context.Context, kind string, rows []map[string]string, policy string) (*BulkReport, error) {
	if !contains(Kinds, kind) {
		return nil, ErrInvalidKind
	}
	if !contains(Policies, policy) {
		return nil, ErrInvalidPolicy
	}

	existingIDs, existingTitles, err := s.existingTitles(ctx, kind)
	if err != nil {
		return nil, err
	}

	report := &BulkReport{}
	for i, row := range rows {
		rowNum := i + 1
		title := strings.TrimSpace(row["title"])
		if title == "" {
			report.Errors = append(report.Errors, RowError{Row: rowNum, Field: "title", Message: "title is required"})
			continue
		}

		bestIdx, bestScore := -1, 0
		for j, existing := range existingTitles {
			if score := s.Matcher.TitleScore(title, existing); score > bestScore {
				bestIdx, bestScore = j, score
			}
		}
		class := ""
		if bestIdx >= 0 {
			class = Classify(s.Matcher.SameTitle(title, existingTitles[bestIdx]), bestScore)
		}

		if err := s.importRow(ctx, kind, row, policy, class, bestIdx, bestScore, existingIDs, report); err != nil {
			report.Errors = append(report.Errors, RowError{Row: rowNum, Message: err.Error()})
		}
	}
	return report, nil
}

func (s *Service) importRow(ctx context.Context, kind string, row map[string]string, policy, class string, bestIdx, bestScore int, existingIDs []string, report *BulkReport) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	switch class {
	case ClassDuplicate:
		switch policy {
		case PolicySkip:
			id, err := insertPendingMatch(ctx, tx, kind, existingIDs[bestIdx], bestScore, ClassDuplicate, row)
			if err != nil {
				return err
			}
			report.Pending = append(report.Pending, id)
			report.Skipped++
		case PolicyReplace:
			if err := deleteEntity(ctx, tx, kind, existingIDs[bestIdx]); err != nil {
				return err
			}
			if _, err := insertEntity(ctx, tx, kind, row); err != nil {
				return err
			}
			report.Replaced++
		case PolicyCreate:
			if _, err := insertEntity(ctx, tx, kind, row); err != nil {
				return err
			}
			report.Created++
		}
	case ClassSimilar:
		if policy == PolicySkip {
			id, err := insertPendingMatch(ctx, tx, kind, existingIDs[bestIdx], bestScore, ClassSimilar, row)
			if err != nil {
				return err
			}
			report.Pending = append(report.Pending, id)
			report.Skipped++
		} else {
			if _, err := insertEntity(ctx, tx, kind, row); err != nil {
				return err
			}
			report.Created++
		}
	default:
		if _, err := insertEntity(ctx, tx, kind, row); err != nil {
			return err
		}
		report.Created++
	}
	return tx.Commit(ctx)
}

func (s *Service) existingTitles(ctx context.Context, kind string) ([]string, []string, error) {
	query := map[string]string{
		KindGoal:       "SELECT id, title FROM goals",
		KindKeyResult:  "SELECT id, title FROM key_results",
		KindInitiative: "SELECT id, name FROM initiatives",
		KindTask:       "SELECT id, title FROM tasks",
	}[kind]

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var ids, titles []string
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		titles = append(titles, title)
	}
	return ids, titles, rows.Err()
}

// insertEntity creates one entity of the given kind from imported fields.
// Shared with pending-match rejection, which replays the stored payload.
func insertEntity(ctx context.Context, tx pgx.Tx, kind string, row map[string]string) (string, error) {
	var id string
	switch kind {
	case KindGoal:
		err := tx.QueryRow(ctx, `
      INSERT INTO goals (title, quarter, status, progress)
      VALUES ($1, $2, $3, 0)
      RETURNING id
    `, row["title"], row["quarter"], statusOrDraft(row)).Scan(&id)
		return id, err
	case KindKeyResult:
		if row["goalId"] == "" {
			return "", fmt.Errorf("key result %q has no goalId", row["title"])
		}
		target := parseFloat(row["targetValue"])
		err := tx.QueryRow(ctx, `
      INSERT INTO key_results (goal_id, title, current_value, target_value, progress, status)
      VALUES ($1, $2, 0, $3, 0, $4)
      RETURNING id
    `, row["goalId"], row["title"], target, statusOrDraft(row)).Scan(&id)
		return id, err
	case KindInitiative:
		if row["keyResultId"] == "" {
			return "", fmt.Errorf("initiative %q has no keyResultId", row["title"])
		}
		err := tx.QueryRow(ctx, `
      INSERT INTO initiatives (key_result_id, name, status, progress, team, category)
      VALUES ($1, $2, $3, 0, NULLIF($4,''), NULLIF($5,''))
      RETURNING id
    `, row["keyResultId"], row["title"], statusOrDraft(row), row["team"], row["category"]).Scan(&id)
		return id, err
	case KindTask:
		assignees := splitAssignees(row["assignees"])
		err := tx.QueryRow(ctx, `
      INSERT INTO tasks (title, goal_id, status, imported_assignees)
      VALUES ($1, NULLIF($2,'')::uuid, $3, $4)
      RETURNING id
    `, row["title"], row["goalId"], statusOrDraft(row), assignees).Scan(&id)
		return id, err
	}
	return "", ErrInvalidKind
}

// deleteEntity removes the entity and its assignment rows ahead of a replace.
func deleteEntity(ctx context.Context, tx pgx.Tx, kind, id string) error {
	switch kind {
	case KindGoal:
		_, err := tx.Exec(ctx, "DELETE FROM goals WHERE id = $1", id)
		return err
	case KindKeyResult:
		if _, err := tx.Exec(ctx, "DELETE FROM key_result_assignees WHERE key_result_id = $1", id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, "DELETE FROM key_results WHERE id = $1", id)
		return err
	case KindInitiative:
		if _, err := tx.Exec(ctx, "DELETE FROM initiative_assignees WHERE initiative_id = $1", id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, "DELETE FROM initiatives WHERE id = $1", id)
		return err
	case KindTask:
		_, err := tx.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
		return err
	}
	return ErrInvalidKind
}

func statusOrDraft(row map[string]string) string {
	if status := strings.TrimSpace(row["status"]); status != "" {
		return status
	}
	return okr.StatusDraft
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func splitAssignees(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
