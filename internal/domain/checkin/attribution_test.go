package checkin

import "testing"

func TestScaledContributionSharesCredit(t *testing.T) {
	// two assignees: a 40% report moves progress by 20, not 40
	if got := ScaledContribution(40, 2); got != 20 {
		t.Fatalf("expected 20, got %v", got)
	}
	if got := ScaledContribution(40, 1); got != 40 {
		t.Fatalf("expected 40, got %v", got)
	}
}

func TestScaledContributionZeroAssignees(t *testing.T) {
	// an unassigned target behaves as if it had a single assignee
	if got := ScaledContribution(30, 0); got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}
}

func TestApplyContributionClampsAt100(t *testing.T) {
	if got := ApplyContribution(95, 20); got != 100 {
		t.Fatalf("expected clamp at 100, got %v", got)
	}
}

func TestApplyContributionKeepsTwoDecimals(t *testing.T) {
	// 10 + 40/3 = 23.333... -> 23.33
	got := ApplyContribution(10, ScaledContribution(40, 3))
	if got != 23.33 {
		t.Fatalf("expected 23.33, got %v", got)
	}
}

func TestApplyValueIncrement(t *testing.T) {
	value, progress := ApplyValueIncrement(5, 5, 20)
	if value != 10 {
		t.Fatalf("expected value 10, got %v", value)
	}
	if progress != 50 {
		t.Fatalf("expected progress 50, got %v", progress)
	}
}

func TestApplyValueIncrementCapsAtTarget(t *testing.T) {
	value, progress := ApplyValueIncrement(18, 10, 20)
	if value != 20 {
		t.Fatalf("expected value capped at 20, got %v", value)
	}
	if progress != 100 {
		t.Fatalf("expected progress 100, got %v", progress)
	}
}

func TestApplyValueIncrementZeroTarget(t *testing.T) {
	value, progress := ApplyValueIncrement(5, 5, 0)
	if value != 0 || progress != 0 {
		t.Fatalf("expected (0, 0) for zero target, got (%v, %v)", value, progress)
	}
}

func TestValueIncrementThenContributionStack(t *testing.T) {
	// an item carrying both fields applies the increment first, then the
	// percentage on top of the increment-derived progress
	_, progress := ApplyValueIncrement(5, 5, 20)
	if progress != 50 {
		t.Fatalf("expected increment pass to land on 50, got %v", progress)
	}
	got := ApplyContribution(progress, ScaledContribution(20, 1))
	if got != 70 {
		t.Fatalf("expected stacked progress 70, got %v", got)
	}
	// the order matters once the clamp kicks in
	_, progress = ApplyValueIncrement(16, 10, 20)
	if got := ApplyContribution(progress, ScaledContribution(30, 2)); got != 100 {
		t.Fatalf("expected clamp at 100, got %v", got)
	}
}

func TestTotalAllocation(t *testing.T) {
	items := []Item{
		{TimeAllocationPct: 50},
		{TimeAllocationPct: 40},
		{TimeAllocationPct: 35},
	}
	if got := TotalAllocation(items); got != 125 {
		t.Fatalf("expected 125, got %v", got)
	}
	if TotalAllocation(items) <= AllocationCeiling {
		t.Fatal("expected 125 to exceed the submission ceiling")
	}
}
