package models

import "time"

// Teacher carries the workload limits the engine enforces as hard
// constraints. TravelMinutes is the changeover buffer the teacher needs
// between lessons on different campuses.
type Teacher struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	MaxWeeklyLoad  int       `db:"max_weekly_load" json:"max_weekly_load"`
	MaxConsecutive int       `db:"max_consecutive" json:"max_consecutive"`
	MaxPerDay      int       `db:"max_per_day" json:"max_per_day"`
	TravelMinutes  int       `db:"travel_minutes" json:"travel_minutes"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
