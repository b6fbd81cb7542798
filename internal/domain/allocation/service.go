package allocation

import (
	"context"
	"time"

	"okrplan/internal/domain/capacity"
	"okrplan/internal/platform/querier"
)

// Planned is an estimated weekly allocation, the planning-side counterpart of
// a submitted check-in's actuals.
type Planned struct {
	ID           string    `json:"id"`
	MemberID     string    `json:"memberId"`
	InitiativeID string    `json:"initiativeId"`
	WeekStart    time.Time `json:"weekStart"`
	Percentage   float64   `json:"percentage"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Service struct {
	DB querier.Querier
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db}
}

// Upsert plans a (member, initiative, week) percentage. Any date within the
// week is accepted and normalized to its Monday.
func (s *Service) Upsert(ctx context.Context, memberID, initiativeID string, week time.Time, percentage float64) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO weekly_allocations (member_id, initiative_id, week_start, percentage)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (member_id, initiative_id, week_start)
    DO UPDATE SET percentage = EXCLUDED.percentage
    RETURNING id
  `, memberID, initiativeID, capacity.WeekStart(week), percentage).Scan(&id)
	return id, err
}

func (s *Service) Delete(ctx context.Context, allocationID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM weekly_allocations WHERE id = $1", allocationID)
	return err
}

func (s *Service) ListForWeek(ctx context.Context, week time.Time) ([]Planned, error) {
	return s.list(ctx, `
    SELECT id, member_id, initiative_id, week_start, percentage, created_at
    FROM weekly_allocations
    WHERE week_start = $1
    ORDER BY member_id
  `, capacity.WeekStart(week))
}

func (s *Service) ListForMember(ctx context.Context, memberID string, from, to time.Time) ([]Planned, error) {
	return s.list(ctx, `
    SELECT id, member_id, initiative_id, week_start, percentage, created_at
    FROM weekly_allocations
    WHERE member_id = $1 AND week_start BETWEEN $2 AND $3
    ORDER BY week_start
  `, memberID, capacity.WeekStart(from), capacity.WeekStart(to))
}

func (s *Service) list(ctx context.Context, query string, args ...any) ([]Planned, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Planned
	for rows.Next() {
		var p Planned
		if err := rows.Scan(&p.ID, &p.MemberID, &p.InitiativeID, &p.WeekStart, &p.Percentage, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
