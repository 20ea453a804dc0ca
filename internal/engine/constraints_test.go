package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horariolabs/horario-api/internal/models"
)

func testEvaluator(t *testing.T, f *fixture, opts Options) (*evaluator, *assignment, *Grid) {
	t.Helper()
	snap := f.snapshot()
	grid := f.grid(t)
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	return newEvaluator(snap, grid, opts), newAssignment(snap, grid), grid
}

func slotIdx(t *testing.T, grid *Grid, day, period int) int {
	t.Helper()
	slot, ok := grid.SlotAt(day, period)
	require.True(t, ok)
	idx, ok := grid.IndexOf(slot)
	require.True(t, ok)
	return idx
}

func TestFeasibleRejectsDoubleBookings(t *testing.T) {
	f := newFixture()
	eval, a, grid := testEvaluator(t, f, Options{})
	idx := slotIdx(t, grid, 1, 1)

	math := a.lessons[0]    // class 1, teacher 1
	history := a.lessons[4] // class 1, teacher 2

	ok, _ := eval.feasible(a, math, idx, 0)
	require.True(t, ok)
	a.place(math, idx, 0)

	// class already busy in the slot
	ok, kind := eval.feasible(a, history, idx, 0)
	assert.False(t, ok)
	assert.Equal(t, blockClassBusy, kind)

	// same teacher, different class, same slot
	f2 := newFixture()
	f2.classes = append(f2.classes, models.Class{ID: 2, Name: "1B", Shift: models.ShiftMorning, Students: 30, Active: true})
	f2.requirements = []models.CurriculumRequirement{
		{ID: 1, ClassID: 1, SubjectID: 1, TeacherID: 1, WeeklyLessons: 1, Active: true},
		{ID: 2, ClassID: 2, SubjectID: 1, TeacherID: 1, WeeklyLessons: 1, Active: true},
	}
	f2.rooms = append(f2.rooms, models.Room{ID: 2, Name: "Room 102", Type: models.RoomTypeClassroom, Capacity: 40, CampusID: 1, Active: true})
	eval2, a2, grid2 := testEvaluator(t, f2, Options{})
	idx2 := slotIdx(t, grid2, 1, 1)
	a2.place(a2.lessons[0], idx2, 0)
	ok, kind = eval2.feasible(a2, a2.lessons[1], idx2, 1)
	assert.False(t, ok)
	assert.Equal(t, blockTeacherBusy, kind)
}

func TestFeasibleRejectsRoomMismatch(t *testing.T) {
	lab := models.RoomTypeLab
	f := newFixture()
	f.subjects[0].RoomType = &lab
	f.rooms = []models.Room{
		{ID: 1, Name: "Room 101", Type: models.RoomTypeClassroom, Capacity: 40, CampusID: 1, Active: true},
		{ID: 2, Name: "Lab", Type: models.RoomTypeLab, Capacity: 10, CampusID: 1, Active: true},
	}
	eval, a, grid := testEvaluator(t, f, Options{})
	idx := slotIdx(t, grid, 1, 1)
	math := a.lessons[0]

	// wrong type
	ok, kind := eval.feasible(a, math, idx, 0)
	assert.False(t, ok)
	assert.Equal(t, blockRoom, kind)

	// right type, too small for 30 students
	ok, kind = eval.feasible(a, math, idx, 1)
	assert.False(t, ok)
	assert.Equal(t, blockRoom, kind)
}

func TestFeasibleEnforcesTeacherLimits(t *testing.T) {
	f := newFixture()
	f.teachers[0].MaxPerDay = 2
	f.teachers[0].MaxConsecutive = 1
	eval, a, grid := testEvaluator(t, f, Options{})

	math := a.lessons[0]
	a.place(math, slotIdx(t, grid, 1, 1), 0)

	// consecutive streak of 2 with max 1
	ok, kind := eval.feasible(a, a.lessons[1], slotIdx(t, grid, 1, 2), 0)
	assert.False(t, ok)
	assert.Equal(t, blockTeacherLimit, kind)

	// a gap keeps the streak at 1
	ok, _ = eval.feasible(a, a.lessons[1], slotIdx(t, grid, 1, 3), 0)
	require.True(t, ok)
	a.place(a.lessons[1], slotIdx(t, grid, 1, 3), 0)

	// third lesson on the day exceeds max per day
	ok, kind = eval.feasible(a, a.lessons[2], slotIdx(t, grid, 1, 5), 0)
	assert.False(t, ok)
	assert.Equal(t, blockTeacherLimit, kind)
}

func TestFeasibleEnforcesWeeklyLoad(t *testing.T) {
	f := newFixture()
	f.teachers[0].MaxWeeklyLoad = 1
	eval, a, grid := testEvaluator(t, f, Options{})

	a.place(a.lessons[0], slotIdx(t, grid, 1, 1), 0)
	ok, kind := eval.feasible(a, a.lessons[1], slotIdx(t, grid, 2, 1), 0)
	assert.False(t, ok)
	assert.Equal(t, blockTeacherLimit, kind)
}

func TestFeasibleEnforcesTravelBuffer(t *testing.T) {
	f := newFixture()
	f.teachers[0].TravelMinutes = 30
	f.rooms = []models.Room{
		{ID: 1, Name: "North 1", Type: models.RoomTypeClassroom, Capacity: 40, CampusID: 1, Active: true},
		{ID: 2, Name: "South 1", Type: models.RoomTypeClassroom, Capacity: 40, CampusID: 2, Active: true},
	}
	eval, a, grid := testEvaluator(t, f, Options{EnforceTravel: true, Weights: DefaultWeights()})

	a.place(a.lessons[0], slotIdx(t, grid, 1, 1), 0)

	// adjacent period on another campus is blocked
	ok, kind := eval.feasible(a, a.lessons[1], slotIdx(t, grid, 1, 2), 1)
	assert.False(t, ok)
	assert.Equal(t, blockTravel, kind)

	// same campus adjacent is fine
	ok, _ = eval.feasible(a, a.lessons[1], slotIdx(t, grid, 1, 2), 0)
	assert.True(t, ok)

	// non-adjacent period on another campus is fine
	ok, _ = eval.feasible(a, a.lessons[1], slotIdx(t, grid, 1, 4), 1)
	assert.True(t, ok)
}

func TestTravelBufferIgnoredWhenDisabled(t *testing.T) {
	f := newFixture()
	f.teachers[0].TravelMinutes = 30
	f.rooms = append(f.rooms, models.Room{ID: 2, Name: "South 1", Type: models.RoomTypeClassroom, Capacity: 40, CampusID: 2, Active: true})
	eval, a, grid := testEvaluator(t, f, Options{EnforceTravel: false, Weights: DefaultWeights()})

	a.place(a.lessons[0], slotIdx(t, grid, 1, 1), 0)
	ok, _ := eval.feasible(a, a.lessons[1], slotIdx(t, grid, 1, 2), 1)
	assert.True(t, ok)
}

func TestPlacementPenaltyCountsWindows(t *testing.T) {
	f := newFixture()
	eval, a, grid := testEvaluator(t, f, Options{LimitWindows: true, Weights: Weights{TeacherWindow: 2, ClassWindow: 2}})

	a.place(a.lessons[0], slotIdx(t, grid, 1, 1), 0)

	// placing at period 3 leaves a one-period gap for teacher and class
	penalty := eval.placementPenalty(a, a.lessons[1], slotIdx(t, grid, 1, 3), 0)
	assert.InDelta(t, 4.0, penalty, 1e-9)

	// adjacent placement opens no gap; both lessons are the same subject so
	// only the repeat weight (zero here) could apply
	penalty = eval.placementPenalty(a, a.lessons[1], slotIdx(t, grid, 1, 2), 0)
	assert.InDelta(t, 0.0, penalty, 1e-9)
}

func TestPlacementPenaltyCountsRepeatsAndClustering(t *testing.T) {
	f := newFixture()
	eval, a, grid := testEvaluator(t, f, Options{
		DistributeEvenly: true,
		Weights:          Weights{SameDayRepeat: 1.5, UnevenDistribution: 1.0},
	})

	a.place(a.lessons[0], slotIdx(t, grid, 1, 1), 0)
	a.place(a.lessons[1], slotIdx(t, grid, 1, 2), 0)

	// third math lesson on the same day: one more repeat, clustering delta 2
	penalty := eval.placementPenalty(a, a.lessons[2], slotIdx(t, grid, 1, 3), 0)
	assert.InDelta(t, 1.5+2.0, penalty, 1e-9)

	// fresh day carries no penalty
	penalty = eval.placementPenalty(a, a.lessons[2], slotIdx(t, grid, 2, 1), 0)
	assert.InDelta(t, 0.0, penalty, 1e-9)
}

func TestTotalPenaltySkipsDisabledTerms(t *testing.T) {
	f := newFixture()
	eval, a, grid := testEvaluator(t, f, Options{LimitWindows: false, Weights: Weights{TeacherWindow: 2, ClassWindow: 2}})

	// teacher gap at period 2
	a.place(a.lessons[0], slotIdx(t, grid, 1, 1), 0)
	a.place(a.lessons[1], slotIdx(t, grid, 1, 3), 0)

	// teacher_window disabled, class_window still counts the same gap
	assert.InDelta(t, 2.0, eval.totalPenalty(a), 1e-9)

	eval.opts.LimitWindows = true
	assert.InDelta(t, 4.0, eval.totalPenalty(a), 1e-9)
}

func TestCloneIsolatesTrajectories(t *testing.T) {
	f := newFixture()
	_, a, grid := testEvaluator(t, f, Options{})
	a.place(a.lessons[0], slotIdx(t, grid, 1, 1), 0)

	clone := a.Clone()
	clone.place(clone.lessons[1], slotIdx(t, grid, 1, 2), 0)
	clone.unplace(0)

	assert.Equal(t, 1, a.placedCount())
	assert.Equal(t, 1, clone.placedCount())
	assert.GreaterOrEqual(t, a.placed[0].slotIdx, 0)
	assert.Equal(t, -1, clone.placed[0].slotIdx)
}
