package engine

import (
	"fmt"
	"sort"

	"github.com/horariolabs/horario-api/internal/models"
)

// Slot is one (day, period) teaching cell of the weekly grid. Period is a
// global ordinal within the day: morning periods come first, then afternoon,
// then evening, so period numbers never collide across shifts.
type Slot struct {
	Day    int // 1=Monday .. 6=Saturday
	Period int // 1-based, global within the day
	Shift  models.Shift
	Start  string // "HH:MM"
	End    string
}

type slotKey struct {
	Day    int
	Period int
}

// GridConfig parameterizes the institution's weekly calendar.
type GridConfig struct {
	Days            []int
	PeriodsPerShift int
	LessonMinutes   int
	MorningStart    string
	AfternoonStart  string
	EveningStart    string
}

// Grid enumerates the ordered set of teaching slots for the week.
// Canonical order is day ascending, period ascending; every iteration and
// tie-break in the engine uses this order.
type Grid struct {
	cfg   GridConfig
	slots []Slot
	index map[slotKey]int
}

// NewGrid builds the weekly slot grid.
func NewGrid(cfg GridConfig) (*Grid, error) {
	if cfg.PeriodsPerShift <= 0 {
		return nil, fmt.Errorf("grid: periods per shift must be positive, got %d", cfg.PeriodsPerShift)
	}
	if cfg.LessonMinutes <= 0 {
		return nil, fmt.Errorf("grid: lesson minutes must be positive, got %d", cfg.LessonMinutes)
	}
	if len(cfg.Days) == 0 {
		return nil, fmt.Errorf("grid: at least one active day is required")
	}

	days := append([]int(nil), cfg.Days...)
	sort.Ints(days)
	for _, d := range days {
		if d < 1 || d > 6 {
			return nil, fmt.Errorf("grid: day %d outside Monday..Saturday", d)
		}
	}

	starts := []struct {
		shift models.Shift
		clock string
	}{
		{models.ShiftMorning, cfg.MorningStart},
		{models.ShiftAfternoon, cfg.AfternoonStart},
		{models.ShiftEvening, cfg.EveningStart},
	}

	g := &Grid{cfg: cfg, index: make(map[slotKey]int)}
	for _, day := range days {
		period := 0
		for _, block := range starts {
			base, err := parseClock(block.clock)
			if err != nil {
				return nil, fmt.Errorf("grid: %s start: %w", block.shift, err)
			}
			for p := 0; p < cfg.PeriodsPerShift; p++ {
				period++
				start := base + p*cfg.LessonMinutes
				slot := Slot{
					Day:    day,
					Period: period,
					Shift:  block.shift,
					Start:  formatClock(start),
					End:    formatClock(start + cfg.LessonMinutes),
				}
				g.index[slotKey{Day: day, Period: period}] = len(g.slots)
				g.slots = append(g.slots, slot)
			}
		}
	}
	return g, nil
}

// Slots returns all slots in canonical order.
func (g *Grid) Slots() []Slot {
	return g.slots
}

// SlotsFor returns the slots a class of the given shift may occupy, in
// canonical order. FULL classes span the morning and afternoon blocks.
func (g *Grid) SlotsFor(shift models.Shift) []Slot {
	var out []Slot
	for _, s := range g.slots {
		switch shift {
		case models.ShiftFull:
			if s.Shift == models.ShiftMorning || s.Shift == models.ShiftAfternoon {
				out = append(out, s)
			}
		default:
			if s.Shift == shift {
				out = append(out, s)
			}
		}
	}
	return out
}

// SlotsOfDay returns every slot of one weekday in canonical order.
func (g *Grid) SlotsOfDay(day int) []Slot {
	var out []Slot
	for _, s := range g.slots {
		if s.Day == day {
			out = append(out, s)
		}
	}
	return out
}

// SlotAt resolves a (day, period) pair.
func (g *Grid) SlotAt(day, period int) (Slot, bool) {
	idx, ok := g.index[slotKey{Day: day, Period: period}]
	if !ok {
		return Slot{}, false
	}
	return g.slots[idx], true
}

// IndexOf returns the canonical position of a slot.
func (g *Grid) IndexOf(s Slot) (int, bool) {
	idx, ok := g.index[slotKey{Day: s.Day, Period: s.Period}]
	return idx, ok
}

// Next returns the slot immediately after s within the same day and shift
// block. There is no "next" across a shift boundary: the break between
// blocks means back-to-back periods in different blocks are not adjacent
// teaching time.
func (g *Grid) Next(s Slot) (Slot, bool) {
	next, ok := g.SlotAt(s.Day, s.Period+1)
	if !ok || next.Shift != s.Shift {
		return Slot{}, false
	}
	return next, true
}

// IsConsecutive reports whether b directly follows a on the same day within
// the same shift block.
func (g *Grid) IsConsecutive(a, b Slot) bool {
	return a.Day == b.Day && a.Shift == b.Shift && b.Period == a.Period+1
}

// PeriodsPerShift exposes the block size; blockOf maps a period to its
// shift block index.
func (g *Grid) PeriodsPerShift() int { return g.cfg.PeriodsPerShift }

func (g *Grid) blockOf(period int) int {
	return (period - 1) / g.cfg.PeriodsPerShift
}

// Days returns the active weekdays in ascending order.
func (g *Grid) Days() []int {
	seen := make(map[int]bool)
	var days []int
	for _, s := range g.slots {
		if !seen[s.Day] {
			seen[s.Day] = true
			days = append(days, s.Day)
		}
	}
	return days
}

func parseClock(raw string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(raw, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
