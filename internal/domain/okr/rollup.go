package okr

import "math"

// RoundedMean returns the rounded arithmetic mean of the values. The second
// return is false for an empty slice, which callers treat as a no-op rather
// than an error.
func RoundedMean(values []float64) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(sum / float64(len(values)))), true
}

// AutoCompleteStatus applies the completion transition: progress at or above
// 100 moves the entity to completed unless it is already completed, cancelled,
// or on hold. On-hold is sticky against auto-completion.
func AutoCompleteStatus(current string, progress float64) string {
	if progress < 100 {
		return current
	}
	switch current {
	case StatusCompleted, StatusCancelled, StatusOnHold:
		return current
	}
	return StatusCompleted
}

// ClampProgress bounds a progress value to [0, 100].
func ClampProgress(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Round2 rounds to two decimal places, the precision initiative progress is
// stored at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
