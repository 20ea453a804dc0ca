package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horariolabs/horario-api/internal/models"
)

func testGridConfig(days []int, periods int) GridConfig {
	return GridConfig{
		Days:            days,
		PeriodsPerShift: periods,
		LessonMinutes:   50,
		MorningStart:    "07:30",
		AfternoonStart:  "13:10",
		EveningStart:    "18:50",
	}
}

func TestNewGridEnumeratesSlots(t *testing.T) {
	grid, err := NewGrid(testGridConfig([]int{1, 2}, 2))
	require.NoError(t, err)

	slots := grid.Slots()
	require.Len(t, slots, 12) // 2 days x 3 shifts x 2 periods

	first := slots[0]
	assert.Equal(t, 1, first.Day)
	assert.Equal(t, 1, first.Period)
	assert.Equal(t, models.ShiftMorning, first.Shift)
	assert.Equal(t, "07:30", first.Start)
	assert.Equal(t, "08:20", first.End)

	afternoon := slots[2]
	assert.Equal(t, 3, afternoon.Period)
	assert.Equal(t, models.ShiftAfternoon, afternoon.Shift)
	assert.Equal(t, "13:10", afternoon.Start)

	evening := slots[4]
	assert.Equal(t, 5, evening.Period)
	assert.Equal(t, models.ShiftEvening, evening.Shift)
	assert.Equal(t, "18:50", evening.Start)
}

func TestNewGridRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  GridConfig
	}{
		{"no days", testGridConfig(nil, 6)},
		{"day out of range", testGridConfig([]int{0}, 6)},
		{"sunday", testGridConfig([]int{7}, 6)},
		{"zero periods", testGridConfig([]int{1}, 0)},
		{"bad clock", GridConfig{Days: []int{1}, PeriodsPerShift: 6, LessonMinutes: 50, MorningStart: "late"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestSlotsForFullShiftSpansMorningAndAfternoon(t *testing.T) {
	grid, err := NewGrid(testGridConfig([]int{1}, 2))
	require.NoError(t, err)

	full := grid.SlotsFor(models.ShiftFull)
	require.Len(t, full, 4)
	for _, s := range full {
		assert.NotEqual(t, models.ShiftEvening, s.Shift)
	}

	morning := grid.SlotsFor(models.ShiftMorning)
	assert.Len(t, morning, 2)
}

func TestNextStopsAtShiftBoundary(t *testing.T) {
	grid, err := NewGrid(testGridConfig([]int{1}, 2))
	require.NoError(t, err)

	p1, ok := grid.SlotAt(1, 1)
	require.True(t, ok)
	p2, ok := grid.Next(p1)
	require.True(t, ok)
	assert.Equal(t, 2, p2.Period)
	assert.True(t, grid.IsConsecutive(p1, p2))

	// period 2 is the last morning slot; period 3 opens the afternoon
	_, ok = grid.Next(p2)
	assert.False(t, ok)

	p3, ok := grid.SlotAt(1, 3)
	require.True(t, ok)
	assert.False(t, grid.IsConsecutive(p2, p3))
}

func TestDaysAreSortedAscending(t *testing.T) {
	grid, err := NewGrid(testGridConfig([]int{5, 1, 3}, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, grid.Days())
}
