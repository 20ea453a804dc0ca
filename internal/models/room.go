package models

import "time"

// Room types mirror the registration system's categories.
const (
	RoomTypeClassroom   = "CLASSROOM"
	RoomTypeLab         = "LAB"
	RoomTypeCourt       = "COURT"
	RoomTypeAuditorium  = "AUDITORIUM"
	RoomTypeLibrary     = "LIBRARY"
	RoomTypeComputerLab = "COMPUTER_LAB"
)

// Campus groups rooms by physical site; teachers moving between campuses
// need their travel buffer respected.
type Campus struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	City   string `db:"city" json:"city"`
	Active bool   `db:"active" json:"active"`
}

// Room hosts at most one lesson per slot.
type Room struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Type      string    `db:"type" json:"type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CampusID  int64     `db:"campus_id" json:"campus_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
