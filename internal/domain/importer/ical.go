package importer

import (
	"bufio"
	"io"
	"strings"
	"time"
)

// ParseICal extracts VEVENT blocks from an iCal stream. Only the four fields
// this system consumes are read: UID, SUMMARY, DTSTART, DTEND. All-day DTEND
// values are exclusive per RFC 5545, so one day is subtracted to get the
// inclusive end this system stores.
func ParseICal(r io.Reader) ([]CalendarEvent, error) {
	lines, err := unfold(r)
	if err != nil {
		return nil, err
	}

	var events []CalendarEvent
	var current *CalendarEvent
	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			current = &CalendarEvent{}
		case line == "END:VEVENT":
			if current != nil && !current.Start.IsZero() {
				if current.End.IsZero() {
					current.End = current.Start
				}
				events = append(events, *current)
			}
			current = nil
		case current == nil:
			continue
		case strings.HasPrefix(line, "UID"):
			current.UID = propertyValue(line)
		case strings.HasPrefix(line, "SUMMARY"):
			current.Summary = propertyValue(line)
		case strings.HasPrefix(line, "DTSTART"):
			if t, ok := parseICalTime(line); ok {
				current.Start = t
			}
		case strings.HasPrefix(line, "DTEND"):
			if t, ok := parseICalTime(line); ok {
				if isAllDay(line) {
					t = t.AddDate(0, 0, -1)
				}
				current.End = t
			}
		}
	}
	return events, nil
}

// unfold joins continuation lines (leading space or tab) per RFC 5545 §3.1.
func unfold(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		raw := strings.TrimRight(scanner.Text(), "\r")
		if len(raw) > 0 && (raw[0] == ' ' || raw[0] == '\t') && len(lines) > 0 {
			lines[len(lines)-1] += raw[1:]
			continue
		}
		lines = append(lines, raw)
	}
	return lines, scanner.Err()
}

func propertyValue(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return ""
}

func isAllDay(line string) bool {
	prefix, _, ok := strings.Cut(line, ":")
	if !ok {
		return false
	}
	return strings.Contains(prefix, "VALUE=DATE") || len(propertyValue(line)) == 8
}

func parseICalTime(line string) (time.Time, bool) {
	value := propertyValue(line)
	for _, layout := range []string{"20060102", "20060102T150405Z", "20060102T150405"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
