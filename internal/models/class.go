package models

import "time"

// Shift identifies which block of the day a class attends.
type Shift string

const (
	ShiftMorning   Shift = "MORNING"
	ShiftAfternoon Shift = "AFTERNOON"
	ShiftEvening   Shift = "EVENING"
	ShiftFull      Shift = "FULL"
)

// Valid reports whether the shift is one of the known values.
func (s Shift) Valid() bool {
	switch s {
	case ShiftMorning, ShiftAfternoon, ShiftEvening, ShiftFull:
		return true
	}
	return false
}

// Class is a student group. A class attends lessons in exactly one shift.
type Class struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Grade     string    `db:"grade" json:"grade"`
	Shift     Shift     `db:"shift" json:"shift"`
	Students  int       `db:"students" json:"students"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
