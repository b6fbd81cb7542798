package team

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"okrplan/internal/platform/querier"
)

var ErrNotFound = errors.New("team member not found")

type Service struct {
	DB querier.Querier
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db}
}

func (s *Service) List(ctx context.Context, teamLabel string) ([]Member, error) {
	query := `
    SELECT id, name, weekly_hours, COALESCE(team, ''), created_at, updated_at
    FROM team_members
  `
	var args []any
	if teamLabel != "" {
		query += " WHERE team = $1"
		args = append(args, teamLabel)
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.WeeklyHours, &m.Team, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Service) Get(ctx context.Context, memberID string) (*Member, error) {
	var m Member
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, weekly_hours, COALESCE(team, ''), created_at, updated_at
    FROM team_members
    WHERE id = $1
  `, memberID).Scan(&m.ID, &m.Name, &m.WeeklyHours, &m.Team, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) Create(ctx context.Context, payload Member) (string, error) {
	if payload.WeeklyHours <= 0 {
		payload.WeeklyHours = DefaultWeeklyHours
	}
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO team_members (name, weekly_hours, team)
    VALUES ($1,$2,NULLIF($3,''))
    RETURNING id
  `, payload.Name, payload.WeeklyHours, payload.Team).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) Update(ctx context.Context, memberID, name, teamLabel string, weeklyHours *float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE team_members
    SET name = COALESCE(NULLIF($1,''), name),
        team = COALESCE(NULLIF($2,''), team),
        weekly_hours = COALESCE($3, weekly_hours),
        updated_at = now()
    WHERE id = $4
  `, name, teamLabel, weeklyHours, memberID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, memberID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM team_members WHERE id = $1", memberID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Names returns member ids and display names, the candidate list for import
// matching.
func (s *Service) Names(ctx context.Context) ([]string, []string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name FROM team_members ORDER BY name")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var ids, names []string
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		names = append(names, name)
	}
	return ids, names, rows.Err()
}
