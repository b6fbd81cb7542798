package team

import "time"

const DefaultWeeklyHours = 40

type Member struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	WeeklyHours float64   `json:"weeklyHours"`
	Team        string    `json:"team,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
