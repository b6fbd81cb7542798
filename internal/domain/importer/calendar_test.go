package importer

import (
	"testing"
	"time"

	"okrplan/internal/domain/match"
	"okrplan/internal/domain/timeoff"
)

func TestRankMembersReturnsAllAboveThreshold(t *testing.T) {
	m := match.New(nil)
	names := []string{"Jonathan Reyes", "Jon Park", "Alice Wu"}

	ranked := rankMembers(m, "Jon", names)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked members, got %v", ranked)
	}
	// first-token match outranks containment
	if ranked[0].idx != 1 || ranked[0].score != 80 {
		t.Fatalf("expected Jon Park first with score 80, got %+v", ranked[0])
	}
	if ranked[1].idx != 0 || ranked[1].score != 70 {
		t.Fatalf("expected Jonathan Reyes second with score 70, got %+v", ranked[1])
	}

	if got := rankMembers(m, "Zed", names); got != nil {
		t.Fatalf("expected no ranked members, got %v", got)
	}
}

func TestSplitSummary(t *testing.T) {
	name, hint := splitSummary("Maria Garcia - Vacation")
	if name != "Maria Garcia" || hint != "Vacation" {
		t.Fatalf("expected name and hint, got %q / %q", name, hint)
	}

	name, hint = splitSummary("Maria Garcia")
	if name != "Maria Garcia" || hint != "" {
		t.Fatalf("expected bare name, got %q / %q", name, hint)
	}
}

func TestNormalizeType(t *testing.T) {
	cases := map[string]string{
		"Vacation":     timeoff.TypeVacation,
		"sick leave":   timeoff.TypeSick,
		"Bank Holiday": timeoff.TypeHoliday,
		"":             timeoff.TypeVacation,
		"sabbatical":   timeoff.TypeOther,
	}
	for hint, want := range cases {
		if got := normalizeType(hint); got != want {
			t.Errorf("normalizeType(%q) = %q, want %q", hint, got, want)
		}
	}
}

func TestTimeoffHours(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	event := CalendarEvent{Start: start, End: start.AddDate(0, 0, 4)}
	if got := timeoffHours(event, 40); got != 40 {
		t.Errorf("five-day event at 40h/week: expected 40, got %v", got)
	}

	single := CalendarEvent{Start: start, End: start}
	if got := timeoffHours(single, 40); got != 8 {
		t.Errorf("single day: expected 8, got %v", got)
	}
}
