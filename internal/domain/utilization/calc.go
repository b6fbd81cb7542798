package utilization

import (
	"math"

	"okrplan/internal/domain/capacity"
)

const (
	StatusOverAllocated = "over-allocated"
	StatusUnderUtilized = "under-utilized"
	StatusBalanced      = "balanced"

	overAllocatedAbove = 100
	underUtilizedBelow = 50
)

type Summary struct {
	TotalCapacityHours float64 `json:"totalCapacityHours"`
	HoursWorked        float64 `json:"hoursWorked"`
	TimeOffHours       float64 `json:"timeOffHours"`
	UtilizationPct     float64 `json:"utilizationPct"`
	Status             string  `json:"status"`
}

// Compute derives a quarter utilization summary. Submitted check-in
// percentages are summed across the quarter's weeks, not averaged, so 50% for
// 13 weeks equals 100% for 6.5 weeks. Capacity uses the fixed 13-week
// quarter.
func Compute(weeklyHours, totalAllocationPct, timeOffHours float64) Summary {
	capacityHours := weeklyHours * capacity.WeeksInQuarter
	hoursWorked := totalAllocationPct / 100 * weeklyHours

	pct := 0.0
	if capacityHours > 0 {
		pct = round1((hoursWorked + timeOffHours) / capacityHours * 100)
	}

	return Summary{
		TotalCapacityHours: capacityHours,
		HoursWorked:        hoursWorked,
		TimeOffHours:       timeOffHours,
		UtilizationPct:     pct,
		Status:             classify(pct),
	}
}

// TeamSummary aggregates member summaries by summing hours before dividing,
// never by averaging percentages.
func TeamSummary(members []Summary) Summary {
	var total Summary
	for _, m := range members {
		total.TotalCapacityHours += m.TotalCapacityHours
		total.HoursWorked += m.HoursWorked
		total.TimeOffHours += m.TimeOffHours
	}
	if total.TotalCapacityHours > 0 {
		total.UtilizationPct = round1((total.HoursWorked + total.TimeOffHours) / total.TotalCapacityHours * 100)
	}
	total.Status = classify(total.UtilizationPct)
	return total
}

// classify is dashboard-level signal only; nothing is enforced.
func classify(pct float64) string {
	switch {
	case pct > overAllocatedAbove:
		return StatusOverAllocated
	case pct < underUtilizedBelow:
		return StatusUnderUtilized
	default:
		return StatusBalanced
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
