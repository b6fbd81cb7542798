package okr

import "time"

const (
	StatusDraft      = "draft"
	StatusActive     = "active"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusOnHold     = "on-hold"
	StatusCancelled  = "cancelled"
)

var Statuses = []string{StatusDraft, StatusActive, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled}

// Quarter labels follow "Q<n> <year>", with two free-form sentinels.
const (
	QuarterAll     = "All"
	QuarterBacklog = "Backlog"
)

type Goal struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Quarter   string    `json:"quarter"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	OwnerID   string    `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type KeyResult struct {
	ID           string    `json:"id"`
	GoalID       string    `json:"goalId"`
	Title        string    `json:"title"`
	CurrentValue *float64  `json:"currentValue,omitempty"`
	TargetValue  *float64  `json:"targetValue,omitempty"`
	Progress     int       `json:"progress"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Initiative is the leaf progress-bearing entity. Its progress is stored with
// two decimal places so weekly attribution increments do not compound
// rounding error.
type Initiative struct {
	ID           string    `json:"id"`
	KeyResultID  string    `json:"keyResultId,omitempty"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Progress     float64   `json:"progress"`
	CurrentValue *float64  `json:"currentValue,omitempty"`
	TargetValue  *float64  `json:"targetValue,omitempty"`
	OwnerID      string    `json:"ownerId,omitempty"`
	Team         string    `json:"team,omitempty"`
	Category     string    `json:"category,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
