package task

import "time"

const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"

	// Assignee sources, in ascending precedence for reconciliation.
	SourceInherited = "inherited"
	SourceImported  = "imported"
	SourceManual    = "manual"
)

// Task lives outside the goal/key-result/initiative tree. Its assignees come
// from up to three places at once: a board import, the linked goal's owner,
// and manual resolution.
type Task struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	GoalID             string    `json:"goalId,omitempty"`
	Status             string    `json:"status"`
	EffortHours        float64   `json:"effortHours"`
	ActualHours        float64   `json:"actualHours"`
	ImportedAssignees  []string  `json:"importedAssignees,omitempty"`
	InheritedAssignees []string  `json:"inheritedAssignees,omitempty"`
	ResolvedAssignees  []string  `json:"resolvedAssignees,omitempty"`
	AssigneeSource     string    `json:"assigneeSource,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
