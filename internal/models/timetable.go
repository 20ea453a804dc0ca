package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for a generation run.
type TimetableStatus string

const (
	TimetableStatusDraft      TimetableStatus = "DRAFT"
	TimetableStatusInProgress TimetableStatus = "IN_PROGRESS"
	TimetableStatusFinalized  TimetableStatus = "FINALIZED"
	TimetableStatusApproved   TimetableStatus = "APPROVED"
)

// Valid reports whether the status is one of the known values.
func (s TimetableStatus) Valid() bool {
	switch s {
	case TimetableStatusDraft, TimetableStatusInProgress, TimetableStatusFinalized, TimetableStatusApproved:
		return true
	}
	return false
}

// Pendency reason codes for unallocated lesson instances.
const (
	PendencyNoFeasibleSlot  = "NO_FEASIBLE_SLOT"
	PendencyTeacherOverload = "TEACHER_OVERLOAD"
	PendencyRoomUnavailable = "ROOM_UNAVAILABLE"
	PendencyBudgetExpired   = "TIME_BUDGET_EXCEEDED"
)

// Pendency names a lesson instance the engine could not place.
type Pendency struct {
	ClassID   int64  `json:"class_id"`
	SubjectID int64  `json:"subject_id"`
	TeacherID int64  `json:"teacher_id"`
	Reason    string `json:"reason"`
}

// Timetable is one generation run and its persisted outcome. It owns its
// lesson set: allocations are replaced wholesale on re-generation.
type Timetable struct {
	ID               int64           `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	Year             int             `db:"year" json:"year"`
	Semester         int             `db:"semester" json:"semester"`
	Status           TimetableStatus `db:"status" json:"status"`
	TotalLessons     int             `db:"total_lessons" json:"total_aulas"`
	AllocatedLessons int             `db:"allocated_lessons" json:"aulas_alocadas"`
	QualityScore     float64         `db:"quality_score" json:"qualidade_score"`
	Pendencies       types.JSONText  `db:"pendencies" json:"pendencias"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// Lesson is one allocated lesson instance. Unique per (timetable, class,
// day, period) and per (timetable, teacher, day, period).
type Lesson struct {
	ID          int64     `db:"id" json:"id"`
	TimetableID int64     `db:"timetable_id" json:"horario_id"`
	ClassID     int64     `db:"class_id" json:"turma_id"`
	SubjectID   int64     `db:"subject_id" json:"disciplina_id"`
	TeacherID   int64     `db:"teacher_id" json:"professor_id"`
	RoomID      int64     `db:"room_id" json:"ambiente_id"`
	Day         int       `db:"day" json:"dia_semana"` // 1=Monday .. 6=Saturday
	Period      int       `db:"period" json:"ordem"`
	StartTime   string    `db:"start_time" json:"horario_inicio"`
	EndTime     string    `db:"end_time" json:"horario_fim"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
