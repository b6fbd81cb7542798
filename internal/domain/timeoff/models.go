package timeoff

import "time"

const (
	TypeVacation = "vacation"
	TypeSick     = "sick"
	TypeHoliday  = "holiday"
	TypeOther    = "other"

	SourceManual   = "manual"
	SourceCalendar = "calendar"
)

var Types = []string{TypeVacation, TypeSick, TypeHoliday, TypeOther}

type Entry struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"memberId"`
	Type      string    `json:"type"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Hours     float64   `json:"hours"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProratedEntry is a range-listing row with hours scaled to the queried
// window's day overlap.
type ProratedEntry struct {
	Entry
	OverlapDays   int     `json:"overlapDays"`
	ProratedHours float64 `json:"proratedHours"`
}
