package models

import "time"

// Availability is a sparse per-teacher window. No rows for a teacher means
// available everywhere; a row with Available=false blocks its window; rows
// with Available=true declare the only windows the teacher may teach in.
// Window boundaries align to the institution's canonical period grid.
type Availability struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacher_id"`
	Day       int       `db:"day" json:"day"` // 1=Monday .. 6=Saturday
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	Available bool      `db:"available" json:"available"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
