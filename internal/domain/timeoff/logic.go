package timeoff

import "time"

// OverlapDays returns the inclusive day count shared by [aStart, aEnd] and
// [bStart, bEnd], or 0 when they are disjoint.
func OverlapDays(aStart, aEnd, bStart, bEnd time.Time) int {
	start := maxDate(aStart, bStart)
	end := minDate(aEnd, bEnd)
	if end.Before(start) {
		return 0
	}
	return daysInclusive(start, end)
}

// ProratedHours scales an entry's hours by the fraction of its days that fall
// inside the queried range. A 40h entry half inside the window reports 20h.
func ProratedHours(entry Entry, rangeStart, rangeEnd time.Time) (int, float64) {
	total := daysInclusive(entry.StartDate, entry.EndDate)
	if total <= 0 {
		return 0, 0
	}
	overlap := OverlapDays(entry.StartDate, entry.EndDate, rangeStart, rangeEnd)
	if overlap <= 0 {
		return 0, 0
	}
	return overlap, entry.Hours * float64(overlap) / float64(total)
}

func daysInclusive(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
