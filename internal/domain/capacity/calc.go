package capacity

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidQuarter = errors.New("invalid quarter label")

// WeeksInQuarter is a fixed planning constant. Utilization math uses 13 weeks
// for every quarter regardless of the exact calendar day count, so quarters of
// differing lengths compare on the same denominator.
const WeeksInQuarter = 13

var quarterPattern = regexp.MustCompile(`^Q([1-4])\s+(\d{4})$`)

type QuarterRange struct {
	Start time.Time
	End   time.Time
	Weeks int
}

// HoursForRange converts a percentage allocation over a date range into hours.
// Weeks are counted as ceil(days/7) of the calendar span.
func HoursForRange(weeklyHours, percentage float64, start, end time.Time) float64 {
	if end.Before(start) {
		return 0
	}
	days := daysBetween(start, end)
	weeks := math.Ceil(float64(days) / 7)
	return percentage / 100 * weeklyHours * weeks
}

// ParseQuarter resolves a "Q<n> <year>" label to its calendar bounds. The end
// date is the last day of the quarter's third month, computed from actual
// month lengths so leap-year February comes out right.
func ParseQuarter(label string) (QuarterRange, error) {
	m := quarterPattern.FindStringSubmatch(label)
	if m == nil {
		return QuarterRange{}, fmt.Errorf("%w: %q", ErrInvalidQuarter, label)
	}
	quarter, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	startMonth := time.Month(3*(quarter-1) + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the following month is the quarter's last day
	end := time.Date(year, startMonth+3, 0, 0, 0, 0, 0, time.UTC)

	return QuarterRange{Start: start, End: end, Weeks: WeeksInQuarter}, nil
}

// WeekStart normalizes any date to the Monday of its week, the canonical week
// key for check-ins and planned allocations.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func daysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
