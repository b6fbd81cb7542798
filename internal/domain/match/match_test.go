package match

import "testing"

func TestNameScoreExact(t *testing.T) {
	m := New(nil)
	if score := m.NameScore("Giovanni Gargiulo", "Giovanni Gargiulo"); score != 100 {
		t.Fatalf("expected 100, got %d", score)
	}
	if score := m.NameScore("  giovanni gargiulo ", "Giovanni Gargiulo"); score != 100 {
		t.Fatalf("expected 100 after normalization, got %d", score)
	}
}

func TestNameScoreFirstToken(t *testing.T) {
	m := New(nil)
	if score := m.NameScore("Giovanni Rossi", "Giovanni Gargiulo"); score != 80 {
		t.Fatalf("expected 80, got %d", score)
	}
}

func TestNameScoreSubstring(t *testing.T) {
	m := New(nil)
	// "gio" is not the first token "giovanni", but it is contained in the name
	if score := m.NameScore("Gio", "Giovanni Gargiulo"); score != 70 {
		t.Fatalf("expected 70, got %d", score)
	}
}

func TestNameScoreNicknameTable(t *testing.T) {
	m := New(map[string]string{"Beth": "Elizabeth"})
	if score := m.NameScore("Beth Harmon", "Elizabeth Harmon"); score != 80 {
		t.Fatalf("expected 80 via nickname expansion, got %d", score)
	}
}

func TestNameScoreTokenOverlap(t *testing.T) {
	m := New(nil)
	// one of two tokens overlaps: round(1/2 * 60) = 30
	if score := m.NameScore("Anna Verdi", "Marco Verdi"); score != 30 {
		t.Fatalf("expected 30, got %d", score)
	}
	if score := m.NameScore("Anna Bianchi", "Marco Verdi"); score != 0 {
		t.Fatalf("expected 0, got %d", score)
	}
}

func TestBestMember(t *testing.T) {
	m := New(nil)
	names := []string{"Marco Verdi", "Giovanni Gargiulo", "Anna Bianchi"}
	idx, score := m.BestMember("Giovanni Gargiulo", names)
	if idx != 1 || score != 100 {
		t.Fatalf("expected (1, 100), got (%d, %d)", idx, score)
	}
	if idx, score := m.BestMember("Someone Else", nil); idx != -1 || score != 0 {
		t.Fatalf("expected (-1, 0) for empty list, got (%d, %d)", idx, score)
	}
}

func TestTitleScoreExactIsDuplicate(t *testing.T) {
	m := New(nil)
	if score := m.TitleScore("Deploy staging environment", "Deploy staging environment"); score != 100 {
		t.Fatalf("expected 100, got %d", score)
	}
}

func TestTitleScoreWordOverlap(t *testing.T) {
	m := New(nil)
	// "deploy" and "staging" both match; "production"/"environment" do not pair
	// with anything new: 2 of 3 -> 67
	score := m.TitleScore("Deploy staging cluster", "Deploy staging environment")
	if score != 67 {
		t.Fatalf("expected 67, got %d", score)
	}
}

func TestTitleScoreContainmentFloor(t *testing.T) {
	m := New(nil)
	score := m.TitleScore("Deploy staging", "Deploy staging environment for QA")
	if score < 70 {
		t.Fatalf("expected containment floor of 70, got %d", score)
	}
}

func TestTitleScoreIgnoresShortTokens(t *testing.T) {
	m := New(nil)
	// "of" and "to" are dropped, so both significant words match: 2/2 * 100
	score := m.TitleScore("Migration of billing", "Migration to billing")
	if score != 100 {
		t.Fatalf("expected 100, got %d", score)
	}
}

func TestTitleScoreDisjoint(t *testing.T) {
	m := New(nil)
	if score := m.TitleScore("Rewrite onboarding flow", "Quarterly budget review"); score != 0 {
		t.Fatalf("expected 0, got %d", score)
	}
}
