package engine

import (
	"math"
	"sort"
	"time"

	"github.com/horariolabs/horario-api/internal/models"
)

// Allocation is one placed lesson instance in the final assignment.
type Allocation struct {
	RequirementID int64
	ClassID       int64
	SubjectID     int64
	TeacherID     int64
	RoomID        int64
	Day           int
	Period        int
	Shift         models.Shift
	Start         string
	End           string
}

// Result is the outcome of one generation run.
type Result struct {
	Allocations      []Allocation
	TotalLessons     int
	AllocatedLessons int
	Pendencies       []models.Pendency
	Penalty          float64
	Score            float64
	Elapsed          time.Duration
}

// Complete reports whether every lesson instance was placed.
func (r *Result) Complete() bool {
	return r.AllocatedLessons == r.TotalLessons
}

func (e *Engine) buildResult(a *assignment, elapsed time.Duration) *Result {
	res := &Result{
		TotalLessons: len(a.lessons),
		Penalty:      e.eval.totalPenalty(a),
		Elapsed:      elapsed,
	}

	for li, p := range a.placed {
		if p.slotIdx < 0 {
			continue
		}
		l := a.lessons[li]
		slot := e.grid.Slots()[p.slotIdx]
		res.Allocations = append(res.Allocations, Allocation{
			RequirementID: l.requirementID,
			ClassID:       l.classID,
			SubjectID:     l.subjectID,
			TeacherID:     l.teacherID,
			RoomID:        e.snap.Rooms[p.roomIdx].ID,
			Day:           slot.Day,
			Period:        slot.Period,
			Shift:         slot.Shift,
			Start:         slot.Start,
			End:           slot.End,
		})
	}
	res.AllocatedLessons = len(res.Allocations)

	sort.Slice(res.Allocations, func(i, j int) bool {
		a, b := res.Allocations[i], res.Allocations[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		return a.ClassID < b.ClassID
	})

	for _, li := range a.deferred {
		l := a.lessons[li]
		res.Pendencies = append(res.Pendencies, models.Pendency{
			ClassID:   l.classID,
			SubjectID: l.subjectID,
			TeacherID: l.teacherID,
			Reason:    a.reasons[li],
		})
	}
	sort.Slice(res.Pendencies, func(i, j int) bool {
		a, b := res.Pendencies[i], res.Pendencies[j]
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		return a.TeacherID < b.TeacherID
	})

	res.Score = e.score(a, res)
	return res
}

// score maps an assignment to a 0..100 quality figure. Allocation coverage
// dominates; accumulated soft penalty and schedule gaps discount the rest.
// A complete, penalty-free, gap-free assignment scores exactly 100.
func (e *Engine) score(a *assignment, res *Result) float64 {
	if res.TotalLessons == 0 {
		return 100
	}

	allocRatio := float64(res.AllocatedLessons) / float64(res.TotalLessons)
	penaltyRatio := 1.0 / (1.0 + res.Penalty/float64(res.TotalLessons))

	scheduled, gapped := 0, 0
	for _, periods := range a.teacherDays {
		if len(periods) == 0 {
			continue
		}
		scheduled++
		if gapsIn(e.grid, periods, 0) > 0 {
			gapped++
		}
	}
	for _, periods := range a.classDays {
		if len(periods) == 0 {
			continue
		}
		scheduled++
		if gapsIn(e.grid, periods, 0) > 0 {
			gapped++
		}
	}
	windowFree := 1.0
	if scheduled > 0 {
		windowFree = 1.0 - float64(gapped)/float64(scheduled)
	}

	score := 100 * (0.60*allocRatio + 0.25*penaltyRatio + 0.15*windowFree)
	return math.Max(0, math.Min(100, score))
}

// reasonFromTally maps the dominant hard-constraint blocker to a pendency
// reason code. Teacher load rules win ties over room rules; anything else
// reads as no feasible slot.
func reasonFromTally(tally [blockTravel + 1]int) string {
	overload := tally[blockTeacherLimit]
	room := tally[blockRoom]
	rest := tally[blockClassBusy] + tally[blockTeacherBusy] + tally[blockTeacherUnavailable] + tally[blockTravel]

	switch {
	case overload > 0 && overload >= room && overload >= rest:
		return models.PendencyTeacherOverload
	case room > 0 && room > rest:
		return models.PendencyRoomUnavailable
	}
	return models.PendencyNoFeasibleSlot
}
