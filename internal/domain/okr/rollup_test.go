package okr

import "testing"

func TestRoundedMean(t *testing.T) {
	mean, ok := RoundedMean([]float64{30, 50, 70})
	if !ok || mean != 50 {
		t.Fatalf("expected (50, true), got (%d, %v)", mean, ok)
	}

	mean, ok = RoundedMean([]float64{33, 33, 34})
	if !ok || mean != 33 {
		t.Fatalf("expected (33, true), got (%d, %v)", mean, ok)
	}
}

func TestRoundedMeanRoundsHalfUp(t *testing.T) {
	mean, ok := RoundedMean([]float64{50, 51})
	if !ok || mean != 51 {
		t.Fatalf("expected 50.5 to round to 51, got %d", mean)
	}
}

func TestRoundedMeanEmptyIsNoOp(t *testing.T) {
	if _, ok := RoundedMean(nil); ok {
		t.Fatal("expected ok=false for empty child set")
	}
}

func TestAutoCompleteStatus(t *testing.T) {
	if got := AutoCompleteStatus(StatusInProgress, 100); got != StatusCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
	if got := AutoCompleteStatus(StatusActive, 99.9); got != StatusActive {
		t.Fatalf("expected active below 100, got %s", got)
	}
}

func TestAutoCompleteStatusOnHoldIsSticky(t *testing.T) {
	if got := AutoCompleteStatus(StatusOnHold, 100); got != StatusOnHold {
		t.Fatalf("expected on-hold to stay, got %s", got)
	}
	if got := AutoCompleteStatus(StatusCancelled, 100); got != StatusCancelled {
		t.Fatalf("expected cancelled to stay, got %s", got)
	}
	if got := AutoCompleteStatus(StatusCompleted, 100); got != StatusCompleted {
		t.Fatalf("expected completed to stay, got %s", got)
	}
}

func TestClampProgress(t *testing.T) {
	if got := ClampProgress(135); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	if got := ClampProgress(-5); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := ClampProgress(42.5); got != 42.5 {
		t.Fatalf("expected 42.5, got %v", got)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(33.333333); got != 33.33 {
		t.Fatalf("expected 33.33, got %v", got)
	}
	if got := Round2(66.666666); got != 66.67 {
		t.Fatalf("expected 66.67, got %v", got)
	}
}
