package timeoff

import (
	"context"
	"errors"
	"time"

	"okrplan/internal/platform/querier"
)

var ErrNotFound = errors.New("time off entry not found")

type Service struct {
	DB querier.Querier
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db}
}

func (s *Service) Create(ctx context.Context, payload Entry) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO time_off (member_id, type, start_date, end_date, hours, source)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, payload.MemberID, payload.Type, payload.StartDate, payload.EndDate, payload.Hours, payload.Source).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) Delete(ctx context.Context, entryID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM time_off WHERE id = $1", entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ListForMember(ctx context.Context, memberID string) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, member_id, type, start_date, end_date, hours, source, created_at
    FROM time_off
    WHERE member_id = $1
    ORDER BY start_date DESC
  `, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.MemberID, &e.Type, &e.StartDate, &e.EndDate, &e.Hours, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListInRange returns entries overlapping the window with hours prorated by
// day overlap. This is the loose listing query; quarter utilization applies
// the stricter containment rule instead.
func (s *Service) ListInRange(ctx context.Context, rangeStart, rangeEnd time.Time) ([]ProratedEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, member_id, type, start_date, end_date, hours, source, created_at
    FROM time_off
    WHERE start_date <= $2 AND end_date >= $1
    ORDER BY start_date
  `, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ProratedEntry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.MemberID, &e.Type, &e.StartDate, &e.EndDate, &e.Hours, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		days, hours := ProratedHours(e, rangeStart, rangeEnd)
		entries = append(entries, ProratedEntry{Entry: e, OverlapDays: days, ProratedHours: hours})
	}
	return entries, rows.Err()
}

// ContainedHours sums hours for entries whose full range sits inside the
// bounds, the aggregation rule quarter utilization uses.
func (s *Service) ContainedHours(ctx context.Context, memberID string, rangeStart, rangeEnd time.Time) (float64, error) {
	var hours float64
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(hours), 0)
    FROM time_off
    WHERE member_id = $1 AND start_date >= $2 AND end_date <= $3
  `, memberID, rangeStart, rangeEnd).Scan(&hours)
	return hours, err
}
