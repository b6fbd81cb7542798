package checkin

import "time"

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"

	// Item kinds. Initiative and key-result items attribute progress to an
	// existing target; bau and event items create an ad-hoc initiative under
	// the sentinel "Business as Usual" key result first.
	KindInitiative = "initiative"
	KindKeyResult  = "key_result"
	KindBAU        = "bau"
	KindEvent      = "event"

	// AllocationCeiling is the maximum total time allocation accepted on
	// submission, in percent.
	AllocationCeiling = 120
)

type Checkin struct {
	ID                 string     `json:"id"`
	MemberID           string     `json:"memberId"`
	WeekStart          time.Time  `json:"weekStart"`
	Status             string     `json:"status"`
	TotalAllocationPct float64    `json:"totalAllocationPct"`
	Mood               string     `json:"mood,omitempty"`
	SubmittedAt        *time.Time `json:"submittedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	Items              []Item     `json:"items,omitempty"`
}

type Item struct {
	ID                      string  `json:"id"`
	CheckinID               string  `json:"checkinId,omitempty"`
	Kind                    string  `json:"kind"`
	InitiativeID            string  `json:"initiativeId,omitempty"`
	KeyResultID             string  `json:"keyResultId,omitempty"`
	Note                    string  `json:"note,omitempty"`
	TimeAllocationPct       float64 `json:"timeAllocationPct"`
	ProgressContributionPct float64 `json:"progressContributionPct"`
	CurrentValueIncrement   float64 `json:"currentValueIncrement"`
}

// Result reports which parents a submission touched, already cascaded.
type Result struct {
	CheckinID            string   `json:"checkinId"`
	AffectedKeyResultIDs []string `json:"affectedKeyResultIds"`
	AffectedGoalIDs      []string `json:"affectedGoalIds"`
	CreatedInitiativeIDs []string `json:"createdInitiativeIds,omitempty"`
}
