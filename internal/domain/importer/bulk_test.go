package importer

import (
	"testing"

	"okrplan/internal/domain/match"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		exact bool
		score int
		want  string
	}{
		{true, 100, ClassDuplicate},
		{false, 100, ClassSimilar},
		{false, 70, ClassSimilar},
		{false, 50, ClassSimilar},
		{false, 49, ""},
		{false, 0, ""},
	}
	for _, tc := range cases {
		if got := Classify(tc.exact, tc.score); got != tc.want {
			t.Errorf("Classify(%v, %d) = %q, want %q", tc.exact, tc.score, got, tc.want)
		}
	}
}

func TestClassifyPerfectScoreDifferentTitles(t *testing.T) {
	// every significant word cross-matches, so the score is perfect, but
	// the titles differ and must never classify as a duplicate
	m := match.New(nil)
	candidate, existing := "Migration of billing", "Migration to billing"
	score := m.TitleScore(candidate, existing)
	if score != 100 {
		t.Fatalf("expected score 100, got %d", score)
	}
	if m.SameTitle(candidate, existing) {
		t.Fatal("expected titles to differ after normalization")
	}
	if got := Classify(m.SameTitle(candidate, existing), score); got != ClassSimilar {
		t.Fatalf("expected %q, got %q", ClassSimilar, got)
	}
	if got := Classify(m.SameTitle("Migration to billing", existing), 100); got != ClassDuplicate {
		t.Fatalf("expected %q, got %q", ClassDuplicate, got)
	}
}

func TestSplitAssignees(t *testing.T) {
	got := splitAssignees(" Alice , Bob,,Carol ")
	want := []string{"Alice", "Bob", "Carol"}
	if len(got) != len(want) {
		t.Fatalf("expected %d assignees, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("assignee %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if splitAssignees("  ") != nil {
		t.Error("expected nil for blank input")
	}
}

func TestStatusOrDraft(t *testing.T) {
	if got := statusOrDraft(map[string]string{"status": "active"}); got != "active" {
		t.Errorf("expected active, got %q", got)
	}
	if got := statusOrDraft(map[string]string{}); got != "draft" {
		t.Errorf("expected draft fallback, got %q", got)
	}
}
