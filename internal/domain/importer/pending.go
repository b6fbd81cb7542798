package importer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func insertPendingMatch(ctx context.Context, tx pgx.Tx, kind, existingID string, score int, class string, payload map[string]string) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	var id string
	err = tx.QueryRow(ctx, `
    INSERT INTO pending_matches (kind, existing_id, score, class, payload, status)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, kind, existingID, score, class, encoded, MatchPending).Scan(&id)
	return id, err
}

func (s *Service) ListPendingMatches(ctx context.Context) ([]PendingMatch, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, kind, existing_id, score, class, payload, status, created_at
    FROM pending_matches
    WHERE status = $1
    ORDER BY created_at
  `, MatchPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []PendingMatch
	for rows.Next() {
		m, err := scanPendingMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Service) GetPendingMatch(ctx context.Context, matchID string) (*PendingMatch, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, kind, existing_id, score, class, payload, status, created_at
    FROM pending_matches
    WHERE id = $1
  `, matchID)
	m, err := scanPendingMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ResolvePendingMatch settles one held import row. Confirming keeps the
// existing entity and discards the imported one; rejecting the match creates
// the imported entity from the stored payload. Either way the row leaves the
// pending state and cannot be resolved twice.
func (s *Service) ResolvePendingMatch(ctx context.Context, matchID, action string) (*PendingMatch, error) {
	if action != "confirm" && action != "reject" {
		return nil, ErrInvalidAction
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
    SELECT id, kind, existing_id, score, class, payload, status, created_at
    FROM pending_matches
    WHERE id = $1
    FOR UPDATE
  `, matchID)
	m, err := scanPendingMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	if m.Status != MatchPending {
		return nil, ErrMatchResolved
	}

	if action == "reject" {
		if _, err := insertEntity(ctx, tx, m.Kind, m.Payload); err != nil {
			return nil, err
		}
		m.Status = MatchRejected
	} else {
		m.Status = MatchConfirmed
	}

	if _, err := tx.Exec(ctx, "UPDATE pending_matches SET status = $1, resolved_at = $2 WHERE id = $3",
		m.Status, time.Now().UTC(), m.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanPendingMatch(row pgx.Row) (PendingMatch, error) {
	var m PendingMatch
	var payload []byte
	if err := row.Scan(&m.ID, &m.Kind, &m.ExistingID, &m.Score, &m.Class, &payload, &m.Status, &m.CreatedAt); err != nil {
		return m, err
	}
	if err := json.Unmarshal(payload, &m.Payload); err != nil {
		return m, err
	}
	return m, nil
}
