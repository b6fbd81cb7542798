package timeoff

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlapDays(t *testing.T) {
	if got := OverlapDays(date("2026-03-02"), date("2026-03-06"), date("2026-03-04"), date("2026-03-10")); got != 3 {
		t.Fatalf("expected 3 overlap days, got %d", got)
	}
	if got := OverlapDays(date("2026-03-02"), date("2026-03-06"), date("2026-03-07"), date("2026-03-10")); got != 0 {
		t.Fatalf("expected 0 for disjoint ranges, got %d", got)
	}
	if got := OverlapDays(date("2026-03-02"), date("2026-03-02"), date("2026-03-02"), date("2026-03-02")); got != 1 {
		t.Fatalf("expected 1 for same-day overlap, got %d", got)
	}
}

func TestProratedHoursPartialOverlap(t *testing.T) {
	entry := Entry{
		StartDate: date("2026-03-02"),
		EndDate:   date("2026-03-11"), // 10 days
		Hours:     40,
	}
	days, hours := ProratedHours(entry, date("2026-03-07"), date("2026-03-31"))
	if days != 5 {
		t.Fatalf("expected 5 overlap days, got %d", days)
	}
	if hours != 20 {
		t.Fatalf("expected 20 prorated hours, got %v", hours)
	}
}

func TestProratedHoursFullContainment(t *testing.T) {
	entry := Entry{
		StartDate: date("2026-03-02"),
		EndDate:   date("2026-03-06"),
		Hours:     40,
	}
	days, hours := ProratedHours(entry, date("2026-03-01"), date("2026-03-31"))
	if days != 5 || hours != 40 {
		t.Fatalf("expected (5, 40), got (%d, %v)", days, hours)
	}
}

func TestProratedHoursNoOverlap(t *testing.T) {
	entry := Entry{
		StartDate: date("2026-03-02"),
		EndDate:   date("2026-03-06"),
		Hours:     40,
	}
	days, hours := ProratedHours(entry, date("2026-04-01"), date("2026-04-30"))
	if days != 0 || hours != 0 {
		t.Fatalf("expected (0, 0), got (%d, %v)", days, hours)
	}
}
