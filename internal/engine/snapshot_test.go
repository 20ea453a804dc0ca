package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horariolabs/horario-api/internal/models"
)

func TestValidatePassesOnConsistentInput(t *testing.T) {
	f := newFixture()
	assert.NoError(t, f.snapshot().Validate(f.grid(t)))
}

func TestValidateRejectsDanglingReferences(t *testing.T) {
	f := newFixture()
	f.requirements = append(f.requirements, models.CurriculumRequirement{
		ID: 99, ClassID: 1, SubjectID: 404, TeacherID: 1, WeeklyLessons: 1, Active: true,
	})

	err := f.snapshot().Validate(f.grid(t))
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "subject 404")
}

func TestValidateRejectsInactiveTeacher(t *testing.T) {
	f := newFixture()
	f.teachers[0].Active = false

	err := f.snapshot().Validate(f.grid(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teacher 1")
}

func TestValidateIgnoresInactiveRequirements(t *testing.T) {
	f := newFixture()
	f.requirements = append(f.requirements, models.CurriculumRequirement{
		ID: 99, ClassID: 1, SubjectID: 404, TeacherID: 404, WeeklyLessons: 1, Active: false,
	})
	assert.NoError(t, f.snapshot().Validate(f.grid(t)))
}

func TestValidateRejectsDemandBeyondShiftCapacity(t *testing.T) {
	f := newFixture()
	// morning shift has 5 days x 6 periods = 30 slots
	f.requirements[0].WeeklyLessons = 29
	f.requirements[1].WeeklyLessons = 2

	err := f.snapshot().Validate(f.grid(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demands 31 weekly lessons")
}

func TestValidateRejectsTeacherWithNoSlot(t *testing.T) {
	f := newFixture()
	for day := 1; day <= 6; day++ {
		f.availability = append(f.availability, models.Availability{
			TeacherID: 1, Day: day, StartTime: "00:00", EndTime: "23:59", Available: false,
		})
	}

	err := f.snapshot().Validate(f.grid(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teacher 1 has no available slot")
}

func TestTeacherAvailableDefaultsToEverywhere(t *testing.T) {
	f := newFixture()
	snap := f.snapshot()
	grid := f.grid(t)

	for _, slot := range grid.Slots() {
		assert.True(t, snap.TeacherAvailable(1, slot))
	}
}

func TestTeacherAvailableBlocksUnavailableWindow(t *testing.T) {
	f := newFixture()
	f.availability = []models.Availability{
		{TeacherID: 1, Day: 1, StartTime: "07:30", EndTime: "09:10", Available: false},
	}
	snap := f.snapshot()
	grid := f.grid(t)

	p1, _ := grid.SlotAt(1, 1) // 07:30-08:20
	p2, _ := grid.SlotAt(1, 2) // 08:20-09:10
	p3, _ := grid.SlotAt(1, 3) // 09:10-10:00
	assert.False(t, snap.TeacherAvailable(1, p1))
	assert.False(t, snap.TeacherAvailable(1, p2))
	assert.True(t, snap.TeacherAvailable(1, p3))

	other, _ := grid.SlotAt(2, 1)
	assert.True(t, snap.TeacherAvailable(1, other))
}

func TestTeacherAvailableRestrictsToDeclaredWindows(t *testing.T) {
	f := newFixture()
	f.availability = []models.Availability{
		{TeacherID: 1, Day: 1, StartTime: "07:30", EndTime: "10:00", Available: true},
	}
	snap := f.snapshot()
	grid := f.grid(t)

	inside, _ := grid.SlotAt(1, 2)
	outside, _ := grid.SlotAt(1, 5)
	otherDay, _ := grid.SlotAt(2, 1)
	assert.True(t, snap.TeacherAvailable(1, inside))
	assert.False(t, snap.TeacherAvailable(1, outside))
	assert.False(t, snap.TeacherAvailable(1, otherDay))
}
