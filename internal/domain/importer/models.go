package importer

import "time"

const (
	// Duplicate-resolution policies for bulk import.
	PolicySkip    = "skip"
	PolicyReplace = "replace"
	PolicyCreate  = "create"

	// Pending match lifecycle.
	MatchPending   = "pending"
	MatchConfirmed = "confirmed"
	MatchRejected  = "rejected"

	// Importable entity kinds.
	KindGoal       = "goal"
	KindKeyResult  = "key_result"
	KindInitiative = "initiative"
	KindTask       = "task"

	ClassDuplicate = "duplicate"
	ClassSimilar   = "similar"
)

var Policies = []string{PolicySkip, PolicyReplace, PolicyCreate}
var Kinds = []string{KindGoal, KindKeyResult, KindInitiative, KindTask}

type CalendarEvent struct {
	UID     string    `json:"uid"`
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// RowError is a per-row import failure. Rows after it keep processing; the
// batch reports success with a non-zero error count.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type Suggestion struct {
	EventUID   string `json:"eventUid"`
	Summary    string `json:"summary"`
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Score      int    `json:"score"`
}

type CalendarReport struct {
	Imported    int          `json:"imported"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Errors      []RowError   `json:"errors,omitempty"`
}

type BulkReport struct {
	Created  int        `json:"created"`
	Replaced int        `json:"replaced"`
	Skipped  int        `json:"skipped"`
	Pending  []string   `json:"pendingMatchIds,omitempty"`
	Errors   []RowError `json:"errors,omitempty"`
}

type PendingMatch struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	ExistingID string            `json:"existingId"`
	Score      int               `json:"score"`
	Class      string            `json:"class"`
	Payload    map[string]string `json:"payload"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
}
