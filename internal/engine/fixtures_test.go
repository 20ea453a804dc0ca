package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/horariolabs/horario-api/internal/models"
)

// fixture assembles a small but consistent scheduling instance that tests
// tweak before building the snapshot.
type fixture struct {
	subjects     []models.Subject
	classes      []models.Class
	teachers     []models.Teacher
	rooms        []models.Room
	requirements []models.CurriculumRequirement
	availability []models.Availability
}

func newFixture() *fixture {
	return &fixture{
		subjects: []models.Subject{
			{ID: 1, Name: "Mathematics", Code: "MAT", WeeklyLessons: 4, Active: true},
			{ID: 2, Name: "History", Code: "HIS", WeeklyLessons: 2, Active: true},
		},
		classes: []models.Class{
			{ID: 1, Name: "1A", Grade: "1", Shift: models.ShiftMorning, Students: 30, Active: true},
		},
		teachers: []models.Teacher{
			{ID: 1, Name: "Alice", MaxWeeklyLoad: 30, MaxConsecutive: 6, MaxPerDay: 6, Active: true},
			{ID: 2, Name: "Bruno", MaxWeeklyLoad: 30, MaxConsecutive: 6, MaxPerDay: 6, Active: true},
		},
		rooms: []models.Room{
			{ID: 1, Name: "Room 101", Type: models.RoomTypeClassroom, Capacity: 40, CampusID: 1, Active: true},
		},
		requirements: []models.CurriculumRequirement{
			{ID: 1, ClassID: 1, SubjectID: 1, TeacherID: 1, WeeklyLessons: 4, Active: true},
			{ID: 2, ClassID: 1, SubjectID: 2, TeacherID: 2, WeeklyLessons: 2, Active: true},
		},
	}
}

func (f *fixture) snapshot() *Snapshot {
	return NewSnapshot(f.subjects, f.classes, f.teachers, f.rooms, f.requirements, f.availability)
}

func (f *fixture) grid(t *testing.T) *Grid {
	t.Helper()
	grid, err := NewGrid(GridConfig{
		Days:            []int{1, 2, 3, 4, 5},
		PeriodsPerShift: 6,
		LessonMinutes:   50,
		MorningStart:    "07:30",
		AfternoonStart:  "13:10",
		EveningStart:    "18:50",
	})
	require.NoError(t, err)
	return grid
}
