package utilization

import "testing"

func TestComputeWorkedExample(t *testing.T) {
	// 40h/week member, check-ins summing to 1300% (13 weeks at 100%), 40h off:
	// capacity 520, worked 520, utilization round1(560/520*100) = 107.7
	s := Compute(40, 1300, 40)
	if s.TotalCapacityHours != 520 {
		t.Fatalf("expected capacity 520, got %v", s.TotalCapacityHours)
	}
	if s.HoursWorked != 520 {
		t.Fatalf("expected 520 hours worked, got %v", s.HoursWorked)
	}
	if s.UtilizationPct != 107.7 {
		t.Fatalf("expected 107.7, got %v", s.UtilizationPct)
	}
	if s.Status != StatusOverAllocated {
		t.Fatalf("expected over-allocated, got %s", s.Status)
	}
}

func TestComputeHalfTimeEqualsHalfWeeks(t *testing.T) {
	// summation, not averaging: 50% for 13 weeks == 100% for 6.5 weeks
	a := Compute(40, 50*13, 0)
	b := Compute(40, 100*6.5, 0)
	if a.HoursWorked != b.HoursWorked {
		t.Fatalf("expected equal hours, got %v vs %v", a.HoursWorked, b.HoursWorked)
	}
}

func TestComputeUnderUtilized(t *testing.T) {
	s := Compute(40, 400, 0)
	if s.Status != StatusUnderUtilized {
		t.Fatalf("expected under-utilized, got %s (pct %v)", s.Status, s.UtilizationPct)
	}
}

func TestComputeBalancedBoundaries(t *testing.T) {
	// exactly 100 is not over-allocated, exactly 50 is not under-utilized
	if s := Compute(40, 1300, 0); s.Status != StatusBalanced {
		t.Fatalf("expected balanced at 100, got %s", s.Status)
	}
	if s := Compute(40, 650, 0); s.Status != StatusBalanced {
		t.Fatalf("expected balanced at 50, got %s", s.Status)
	}
}

func TestComputeZeroCapacity(t *testing.T) {
	s := Compute(0, 500, 10)
	if s.UtilizationPct != 0 {
		t.Fatalf("expected 0 pct for zero capacity, got %v", s.UtilizationPct)
	}
}

func TestTeamSummarySumsHoursNotPercentages(t *testing.T) {
	members := []Summary{
		Compute(40, 1300, 0), // 100%
		Compute(20, 0, 0),    // 0%
	}
	team := TeamSummary(members)
	// 520 worked over 780 capacity = 66.7, not the 50 an average would give
	if team.UtilizationPct != 66.7 {
		t.Fatalf("expected 66.7, got %v", team.UtilizationPct)
	}
	if team.TotalCapacityHours != 780 {
		t.Fatalf("expected 780 capacity, got %v", team.TotalCapacityHours)
	}
}
