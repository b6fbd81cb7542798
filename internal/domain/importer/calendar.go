package importer

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"okrplan/internal/domain/match"
	"okrplan/internal/domain/timeoff"
	"okrplan/internal/platform/querier"
)

// FeedFetcher is the collaborator boundary for the external calendar: it
// returns parsed events for a feed URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]CalendarEvent, error)
}

// HTTPFeedFetcher downloads and parses an iCal feed.
type HTTPFeedFetcher struct {
	Client *http.Client
}

func (f *HTTPFeedFetcher) Fetch(ctx context.Context, feedURL string) ([]CalendarEvent, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar feed returned status %d", resp.StatusCode)
	}
	return ParseICal(resp.Body)
}

type Service struct {
	DB      querier.Beginner
	Matcher *match.Matcher
	Fetcher FeedFetcher
}

func NewService(db querier.Beginner, matcher *match.Matcher, fetcher FeedFetcher) *Service {
	if fetcher == nil {
		fetcher = &HTTPFeedFetcher{}
	}
	return &Service{DB: db, Matcher: matcher, Fetcher: fetcher}
}

// ImportCalendar turns calendar events into time-off rows. Full-confidence
// name matches apply automatically; weaker matches at or above the suggestion
// threshold come back as ranked suggestions for manual handling. Events the
// feed already delivered (same uid) are skipped.
func (s *Service) ImportCalendar(ctx context.Context, feedURL string) (*CalendarReport, error) {
	events, err := s.Fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrEmptyFeed
	}

	memberIDs, memberNames, weeklyHours, err := s.memberDirectory(ctx)
	if err != nil {
		return nil, err
	}

	report := &CalendarReport{}
	for i, event := range events {
		row := i + 1
		if event.Summary == "" {
			report.Errors = append(report.Errors, RowError{Row: row, Field: "summary", Message: "event has no summary"})
			continue
		}

		var exists int
		if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM time_off WHERE source_uid = $1", event.UID).Scan(&exists); err != nil {
			return nil, err
		}
		if event.UID != "" && exists > 0 {
			continue
		}

		candidate, typeHint := splitSummary(event.Summary)
		ranked := rankMembers(s.Matcher, candidate, memberNames)
		switch {
		case len(ranked) > 0 && ranked[0].score == 100:
			idx := ranked[0].idx
			hours := timeoffHours(event, weeklyHours[idx])
			if _, err := s.DB.Exec(ctx, `
        INSERT INTO time_off (member_id, type, start_date, end_date, hours, source, source_uid)
        VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''))
      `, memberIDs[idx], normalizeType(typeHint), event.Start, event.End, hours, timeoff.SourceCalendar, event.UID); err != nil {
				report.Errors = append(report.Errors, RowError{Row: row, Message: err.Error()})
				continue
			}
			report.Imported++
		case len(ranked) > 0:
			for _, m := range ranked {
				report.Suggestions = append(report.Suggestions, Suggestion{
					EventUID:   event.UID,
					Summary:    event.Summary,
					MemberID:   memberIDs[m.idx],
					MemberName: memberNames[m.idx],
					Score:      m.score,
				})
			}
		default:
			report.Errors = append(report.Errors, RowError{Row: row, Field: "summary", Message: fmt.Sprintf("no member matched %q", candidate)})
		}
	}
	return report, nil
}

type rankedMember struct {
	idx   int
	score int
}

// rankMembers scores the candidate against every member and returns all who
// reach the suggestion threshold, best first. Ties keep directory order.
func rankMembers(m *match.Matcher, candidate string, names []string) []rankedMember {
	var ranked []rankedMember
	for i, name := range names {
		if score := m.NameScore(candidate, name); score >= match.NameSuggestionThreshold {
			ranked = append(ranked, rankedMember{idx: i, score: score})
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })
	return ranked
}

func (s *Service) memberDirectory(ctx context.Context) ([]string, []string, []float64, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, weekly_hours FROM team_members ORDER BY name")
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	var ids, names []string
	var hours []float64
	for rows.Next() {
		var id, name string
		var weekly float64
		if err := rows.Scan(&id, &name, &weekly); err != nil {
			return nil, nil, nil, err
		}
		ids = append(ids, id)
		names = append(names, name)
		hours = append(hours, weekly)
	}
	return ids, names, hours, rows.Err()
}

// splitSummary separates "Name - Vacation" style summaries into the candidate
// name and a type hint. Without a separator the whole summary is the name.
func splitSummary(summary string) (string, string) {
	if name, hint, ok := strings.Cut(summary, " - "); ok {
		return strings.TrimSpace(name), strings.TrimSpace(hint)
	}
	return strings.TrimSpace(summary), ""
}

func normalizeType(hint string) string {
	switch strings.ToLower(hint) {
	case "sick", "sick leave", "illness":
		return timeoff.TypeSick
	case "holiday", "public holiday", "bank holiday":
		return timeoff.TypeHoliday
	case "", "vacation", "annual leave", "pto", "leave":
		return timeoff.TypeVacation
	}
	return timeoff.TypeOther
}

// timeoffHours assumes a five-day working week at the member's weekly rate.
func timeoffHours(event CalendarEvent, weeklyHours float64) float64 {
	days := int(event.End.Sub(event.Start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return float64(days) * weeklyHours / 5
}
