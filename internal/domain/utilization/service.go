package utilization

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"okrplan/internal/domain/capacity"
	"okrplan/internal/platform/querier"
)

var ErrMemberNotFound = errors.New("team member not found")

type Service struct {
	DB querier.Querier
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db}
}

type MemberSummary struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	Quarter  string `json:"quarter"`
	Summary
}

// ForMember computes one member's quarter utilization from submitted
// check-ins and contained time off.
func (s *Service) ForMember(ctx context.Context, memberID, quarterLabel string) (*MemberSummary, error) {
	qr, err := capacity.ParseQuarter(quarterLabel)
	if err != nil {
		return nil, err
	}

	var name string
	var weeklyHours float64
	if err := s.DB.QueryRow(ctx, "SELECT name, weekly_hours FROM team_members WHERE id = $1", memberID).Scan(&name, &weeklyHours); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	var totalAllocationPct float64
	if err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(total_allocation_pct), 0)
    FROM weekly_checkins
    WHERE member_id = $1 AND status = 'submitted' AND week_start BETWEEN $2 AND $3
  `, memberID, qr.Start, qr.End).Scan(&totalAllocationPct); err != nil {
		return nil, err
	}

	// containment, not overlap proration: only ranges fully inside the
	// quarter count at this aggregation level
	var timeOffHours float64
	if err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(hours), 0)
    FROM time_off
    WHERE member_id = $1 AND start_date >= $2 AND end_date <= $3
  `, memberID, qr.Start, qr.End).Scan(&timeOffHours); err != nil {
		return nil, err
	}

	return &MemberSummary{
		MemberID: memberID,
		Name:     name,
		Quarter:  quarterLabel,
		Summary:  Compute(weeklyHours, totalAllocationPct, timeOffHours),
	}, nil
}

type TeamReport struct {
	Team    string          `json:"team"`
	Quarter string          `json:"quarter"`
	Members []MemberSummary `json:"members"`
	Totals  Summary         `json:"totals"`
}

// ForTeam aggregates every member carrying the team label. Totals sum hours
// across members before dividing.
func (s *Service) ForTeam(ctx context.Context, teamLabel, quarterLabel string) (*TeamReport, error) {
	if _, err := capacity.ParseQuarter(quarterLabel); err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, "SELECT id FROM team_members WHERE team = $1 ORDER BY name", teamLabel)
	if err != nil {
		return nil, err
	}
	memberIDs, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	report := &TeamReport{Team: teamLabel, Quarter: quarterLabel}
	summaries := make([]Summary, 0, len(memberIDs))
	for _, id := range memberIDs {
		ms, err := s.ForMember(ctx, id, quarterLabel)
		if err != nil {
			return nil, err
		}
		report.Members = append(report.Members, *ms)
		summaries = append(summaries, ms.Summary)
	}
	report.Totals = TeamSummary(summaries)
	return report, nil
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
