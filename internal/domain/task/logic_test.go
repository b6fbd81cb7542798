package task

import "testing"

func TestEffectiveAssigneesPrecedence(t *testing.T) {
	imported := []string{"m1"}
	inherited := []string{"m2"}
	resolved := []string{"m3"}

	got, source := EffectiveAssignees(imported, inherited, resolved)
	if source != SourceManual || len(got) != 1 || got[0] != "m3" {
		t.Fatalf("expected manual m3, got %v from %s", got, source)
	}

	got, source = EffectiveAssignees(imported, inherited, nil)
	if source != SourceImported || got[0] != "m1" {
		t.Fatalf("expected imported m1, got %v from %s", got, source)
	}

	got, source = EffectiveAssignees(nil, inherited, nil)
	if source != SourceInherited || got[0] != "m2" {
		t.Fatalf("expected inherited m2, got %v from %s", got, source)
	}

	got, source = EffectiveAssignees(nil, nil, nil)
	if got != nil || source != "" {
		t.Fatalf("expected empty result, got %v from %q", got, source)
	}
}

func TestNeedsResolution(t *testing.T) {
	if !NeedsResolution([]string{"m1"}, []string{"m2"}, nil) {
		t.Fatal("expected conflict between differing sources")
	}
	if NeedsResolution([]string{"m1"}, []string{"m1"}, nil) {
		t.Fatal("expected agreement not to conflict")
	}
	if NeedsResolution([]string{"m1", "m2"}, []string{"m2", "m1"}, nil) {
		t.Fatal("expected order-insensitive comparison")
	}
	if NeedsResolution([]string{"m1"}, []string{"m2"}, []string{"m3"}) {
		t.Fatal("manual resolution settles any conflict")
	}
	if NeedsResolution([]string{"m1"}, nil, nil) {
		t.Fatal("a single source cannot conflict")
	}
}
