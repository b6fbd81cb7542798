package importer

import (
	"strings"
	"testing"
)

const sampleFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-1@calendar\r\n" +
	"SUMMARY:Giovanni Gargiulo - Vacation\r\n" +
	"DTSTART;VALUE=DATE:20260302\r\n" +
	"DTEND;VALUE=DATE:20260307\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-2@calendar\r\n" +
	"SUMMARY:Team offsite with a very long summary that wraps aro\r\n" +
	" und onto a second line\r\n" +
	"DTSTART:20260310T090000Z\r\n" +
	"DTEND:20260310T170000Z\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseICal(t *testing.T) {
	events, err := ParseICal(strings.NewReader(sampleFeed))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	first := events[0]
	if first.UID != "evt-1@calendar" {
		t.Fatalf("unexpected uid %q", first.UID)
	}
	if first.Summary != "Giovanni Gargiulo - Vacation" {
		t.Fatalf("unexpected summary %q", first.Summary)
	}
	if got := first.Start.Format("2006-01-02"); got != "2026-03-02" {
		t.Fatalf("unexpected start %s", got)
	}
	// all-day DTEND is exclusive: 20260307 means the entry ends on the 6th
	if got := first.End.Format("2006-01-02"); got != "2026-03-06" {
		t.Fatalf("unexpected end %s", got)
	}
}

func TestParseICalUnfoldsContinuationLines(t *testing.T) {
	events, err := ParseICal(strings.NewReader(sampleFeed))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "Team offsite with a very long summary that wraps around onto a second line"
	if events[1].Summary != want {
		t.Fatalf("expected unfolded summary %q, got %q", want, events[1].Summary)
	}
}

func TestParseICalTimedEventKeepsEnd(t *testing.T) {
	events, err := ParseICal(strings.NewReader(sampleFeed))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := events[1].End.Format("2006-01-02"); got != "2026-03-10" {
		t.Fatalf("timed DTEND must not shift, got %s", got)
	}
}

func TestParseICalIgnoresMalformedBlocks(t *testing.T) {
	feed := "BEGIN:VCALENDAR\nBEGIN:VEVENT\nSUMMARY:no dates\nEND:VEVENT\nEND:VCALENDAR\n"
	events, err := ParseICal(strings.NewReader(feed))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected dateless event to be dropped, got %d", len(events))
	}
}
