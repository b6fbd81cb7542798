package capacity

import (
	"testing"
	"time"
)

func TestHoursForRange(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)

	// 14 days -> 2 weeks, 50% of 40h/week
	hours := HoursForRange(40, 50, start, end)
	if hours != 40 {
		t.Fatalf("expected 40 hours, got %v", hours)
	}
}

func TestHoursForRangePartialWeekRoundsUp(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)

	// 8 days -> ceil to 2 weeks
	hours := HoursForRange(40, 100, start, end)
	if hours != 80 {
		t.Fatalf("expected 80 hours, got %v", hours)
	}
}

func TestHoursForRangeInvertedRange(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if hours := HoursForRange(40, 100, start, end); hours != 0 {
		t.Fatalf("expected 0 hours for inverted range, got %v", hours)
	}
}

func TestParseQuarterLeapYear(t *testing.T) {
	q, err := ParseQuarter("Q1 2028")
	if err != nil {
		t.Fatalf("parse quarter: %v", err)
	}
	if got := q.Start.Format("2006-01-02"); got != "2028-01-01" {
		t.Fatalf("expected start 2028-01-01, got %s", got)
	}
	if got := q.End.Format("2006-01-02"); got != "2028-03-31" {
		t.Fatalf("expected end 2028-03-31, got %s", got)
	}
	// 91 actual days, but the week constant never moves
	if q.Weeks != 13 {
		t.Fatalf("expected 13 weeks, got %d", q.Weeks)
	}
}

func TestParseQuarterFourthQuarter(t *testing.T) {
	q, err := ParseQuarter("Q4 2026")
	if err != nil {
		t.Fatalf("parse quarter: %v", err)
	}
	if got := q.Start.Format("2006-01-02"); got != "2026-10-01" {
		t.Fatalf("expected start 2026-10-01, got %s", got)
	}
	if got := q.End.Format("2006-01-02"); got != "2026-12-31" {
		t.Fatalf("expected end 2026-12-31, got %s", got)
	}
}

func TestParseQuarterRejectsSentinels(t *testing.T) {
	for _, label := range []string{"All", "Backlog", "Q5 2026", "Q1", ""} {
		if _, err := ParseQuarter(label); err == nil {
			t.Fatalf("expected error for label %q", label)
		}
	}
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-08-26", "2026-08-24"}, // Wednesday -> Monday
		{"2026-08-24", "2026-08-24"}, // Monday is a fixed point
		{"2026-08-30", "2026-08-24"}, // Sunday belongs to the prior Monday
	}
	for _, tc := range cases {
		day, err := time.Parse("2006-01-02", tc.in)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.in, err)
		}
		if got := WeekStart(day).Format("2006-01-02"); got != tc.want {
			t.Fatalf("WeekStart(%s): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}
