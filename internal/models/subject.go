package models

import "time"

// Subject is a curriculum discipline. Read-only here: registration is owned
// by the surrounding administration system.
type Subject struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Code          string    `db:"code" json:"code"`
	WeeklyLessons int       `db:"weekly_lessons" json:"weekly_lessons"`
	LessonMinutes int       `db:"lesson_minutes" json:"lesson_minutes"`
	Color         string    `db:"color" json:"color"`
	RoomType      *string   `db:"room_type" json:"room_type,omitempty"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
