package models

import "time"

// CurriculumRequirement is the unit of demand: a (class, subject, teacher)
// triple that expands into WeeklyLessons atomic lesson instances per run.
type CurriculumRequirement struct {
	ID            int64     `db:"id" json:"id"`
	ClassID       int64     `db:"class_id" json:"class_id"`
	SubjectID     int64     `db:"subject_id" json:"subject_id"`
	TeacherID     int64     `db:"teacher_id" json:"teacher_id"`
	WeeklyLessons int       `db:"weekly_lessons" json:"weekly_lessons"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
