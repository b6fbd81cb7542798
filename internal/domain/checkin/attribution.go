package checkin

import (
	"math"

	"okrplan/internal/domain/okr"
)

// ScaledContribution divides a self-reported contribution by the number of
// assignees sharing the target. Credit is share-weighted, not taken at face
// value. Zero assignees counts as one.
func ScaledContribution(contributionPct float64, assigneeCount int) float64 {
	if assigneeCount < 1 {
		assigneeCount = 1
	}
	return contributionPct / float64(assigneeCount)
}

// ApplyContribution accumulates a scaled contribution onto current progress,
// clamped at 100 and kept to two decimal places so weekly increments do not
// drift.
func ApplyContribution(currentProgress, scaledContribution float64) float64 {
	return math.Min(100, okr.Round2(currentProgress+scaledContribution))
}

// ApplyValueIncrement advances a value-tracked initiative: the current value
// is capped at target and progress recomputed from the ratio.
func ApplyValueIncrement(currentValue, increment, targetValue float64) (newValue, newProgress float64) {
	newValue = math.Min(targetValue, currentValue+increment)
	if targetValue <= 0 {
		return newValue, 0
	}
	newProgress = math.Min(100, math.Round(newValue/targetValue*100))
	return newValue, newProgress
}

// TotalAllocation sums the time allocation across items.
func TotalAllocation(items []Item) float64 {
	total := 0.0
	for _, item := range items {
		total += item.TimeAllocationPct
	}
	return total
}
