package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"okrplan/internal/domain/capacity"
	"okrplan/internal/domain/utilization"
	"okrplan/internal/platform/querier"
)

type Service struct {
	DB          querier.Querier
	Utilization *utilization.Service
}

func NewService(db querier.Querier, util *utilization.Service) *Service {
	return &Service{DB: db, Utilization: util}
}

// QuarterReport is the full utilization report for one quarter: every member
// regardless of team, plus per-team rollups.
type QuarterReport struct {
	Quarter string                         `json:"quarter"`
	Members []utilization.MemberSummary    `json:"members"`
	Teams   map[string]utilization.Summary `json:"teams"`
}

func (s *Service) QuarterUtilization(ctx context.Context, quarterLabel string) (*QuarterReport, error) {
	if _, err := capacity.ParseQuarter(quarterLabel); err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, "SELECT id, COALESCE(team, '') FROM team_members ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids, teams []string
	for rows.Next() {
		var id, teamLabel string
		if err := rows.Scan(&id, &teamLabel); err != nil {
			return nil, err
		}
		ids = append(ids, id)
		teams = append(teams, teamLabel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	report := &QuarterReport{Quarter: quarterLabel, Teams: map[string]utilization.Summary{}}
	byTeam := map[string][]utilization.Summary{}
	for i, id := range ids {
		ms, err := s.Utilization.ForMember(ctx, id, quarterLabel)
		if err != nil {
			return nil, err
		}
		report.Members = append(report.Members, *ms)
		if teams[i] != "" {
			byTeam[teams[i]] = append(byTeam[teams[i]], ms.Summary)
		}
	}
	for teamLabel, summaries := range byTeam {
		report.Teams[teamLabel] = utilization.TeamSummary(summaries)
	}
	return report, nil
}

// ExportCSV renders the quarter report as CSV, one row per member.
func (s *Service) ExportCSV(ctx context.Context, quarterLabel string) ([]byte, error) {
	report, err := s.QuarterUtilization(ctx, quarterLabel)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"member_id", "name", "quarter", "capacity_hours", "hours_worked", "time_off_hours", "utilization_pct", "status"}); err != nil {
		return nil, err
	}
	for _, m := range report.Members {
		record := []string{
			m.MemberID,
			m.Name,
			m.Quarter,
			formatFloat(m.TotalCapacityHours),
			formatFloat(m.HoursWorked),
			formatFloat(m.TimeOffHours),
			formatFloat(m.UtilizationPct),
			m.Status,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportPDF renders the quarter report as a one-page summary document.
func (s *Service) ExportPDF(ctx context.Context, quarterLabel string) ([]byte, error) {
	report, err := s.QuarterUtilization(ctx, quarterLabel)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Utilization Report %s", report.Quarter))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 7, "Member", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Hours Worked", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Time Off", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Util %", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Status", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, m := range report.Members {
		pdf.CellFormat(60, 7, m.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, formatFloat(m.HoursWorked), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatFloat(m.TimeOffHours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, formatFloat(m.UtilizationPct), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, m.Status, "1", 1, "L", false, 0, "")
	}

	if len(report.Teams) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Team Totals")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 10)
		for teamLabel, totals := range report.Teams {
			pdf.Cell(0, 7, fmt.Sprintf("%s: %.1f%% (%s)", teamLabel, totals.UtilizationPct, totals.Status))
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
