package task

// EffectiveAssignees picks which assignee list a task answers with. Manual
// resolution always wins, then board-imported assignees, then assignees
// inherited from the linked goal.
func EffectiveAssignees(imported, inherited, resolved []string) ([]string, string) {
	if len(resolved) > 0 {
		return resolved, SourceManual
	}
	if len(imported) > 0 {
		return imported, SourceImported
	}
	if len(inherited) > 0 {
		return inherited, SourceInherited
	}
	return nil, ""
}

// NeedsResolution reports whether imported and inherited assignees disagree
// with no manual resolution recorded. Order is ignored.
func NeedsResolution(imported, inherited, resolved []string) bool {
	if len(resolved) > 0 {
		return false
	}
	if len(imported) == 0 || len(inherited) == 0 {
		return false
	}
	return !sameSet(imported, inherited)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
		if seen[v] < 0 {
			return false
		}
	}
	return true
}
