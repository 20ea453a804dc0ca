package engine

import "github.com/horariolabs/horario-api/internal/models"

// Options are the per-run knobs recognised by the generation contract.
type Options struct {
	LimitWindows     bool
	EnforceTravel    bool
	DistributeEvenly bool
	Weights          Weights
}

// Weights are the soft-constraint penalty weights for one run.
type Weights struct {
	TeacherWindow      float64
	ClassWindow        float64
	SameDayRepeat      float64
	UnevenDistribution float64
}

// DefaultWeights mirror the configuration defaults.
func DefaultWeights() Weights {
	return Weights{TeacherWindow: 2.0, ClassWindow: 2.0, SameDayRepeat: 1.5, UnevenDistribution: 1.0}
}

// Hard-constraint rejection kinds, tracked while scanning candidates so a
// lesson with no feasible placement gets a meaningful pendency reason.
const (
	blockNone = iota
	blockClassBusy
	blockTeacherBusy
	blockTeacherUnavailable
	blockTeacherLimit
	blockRoom
	blockTravel
)

// lesson is one atomic occurrence of a curriculum requirement.
type lesson struct {
	idx            int
	requirementID  int64
	classID        int64
	subjectID      int64
	teacherID      int64
	shift          models.Shift
	students       int
	roomType       *string
	travelMinutes  int
	maxPerDay      int
	maxConsecutive int
	maxWeekly      int
}

// expandLessons turns requirements into lesson instances preserving
// requirement insertion order, the final tie-break everywhere.
func expandLessons(snap *Snapshot) []lesson {
	var lessons []lesson
	for _, req := range snap.Requirements {
		class := snap.Classes[req.ClassID]
		subject := snap.Subjects[req.SubjectID]
		teacher := snap.Teachers[req.TeacherID]
		for i := 0; i < req.WeeklyLessons; i++ {
			lessons = append(lessons, lesson{
				idx:            len(lessons),
				requirementID:  req.ID,
				classID:        req.ClassID,
				subjectID:      req.SubjectID,
				teacherID:      req.TeacherID,
				shift:          class.Shift,
				students:       class.Students,
				roomType:       subject.RoomType,
				travelMinutes:  teacher.TravelMinutes,
				maxPerDay:      teacher.MaxPerDay,
				maxConsecutive: teacher.MaxConsecutive,
				maxWeekly:      teacher.MaxWeeklyLoad,
			})
		}
	}
	return lessons
}

type placement struct {
	slotIdx int
	roomIdx int
}

type dayKey struct {
	id  int64
	day int
}

type csdKey struct {
	class   int64
	subject int64
	day     int
}

// assignment is the mutable search state for one trajectory. All indexes
// stay consistent through place/unplace; Clone gives each repair trajectory
// an isolated copy.
type assignment struct {
	snap    *Snapshot
	grid    *Grid
	lessons []lesson

	placed   []placement // by lesson idx; slotIdx -1 means unplaced
	deferred []int
	reasons  map[int]string

	teacherWeek     map[int64]int
	teacherDays     map[dayKey]map[int]int // period -> lesson idx
	classDays       map[dayKey]map[int]int
	roomDays        map[dayKey]map[int]int
	teacherCampus   map[dayKey]map[int]int64 // period -> campus of the room in use
	classSubjectDay map[csdKey]int
}

func newAssignment(snap *Snapshot, grid *Grid) *assignment {
	lessons := expandLessons(snap)
	placed := make([]placement, len(lessons))
	for i := range placed {
		placed[i] = placement{slotIdx: -1, roomIdx: -1}
	}
	return &assignment{
		snap:            snap,
		grid:            grid,
		lessons:         lessons,
		placed:          placed,
		reasons:         make(map[int]string),
		teacherWeek:     make(map[int64]int),
		teacherDays:     make(map[dayKey]map[int]int),
		classDays:       make(map[dayKey]map[int]int),
		roomDays:        make(map[dayKey]map[int]int),
		teacherCampus:   make(map[dayKey]map[int]int64),
		classSubjectDay: make(map[csdKey]int),
	}
}

func (a *assignment) Clone() *assignment {
	clone := &assignment{
		snap:            a.snap,
		grid:            a.grid,
		lessons:         a.lessons,
		placed:          append([]placement(nil), a.placed...),
		deferred:        append([]int(nil), a.deferred...),
		reasons:         make(map[int]string, len(a.reasons)),
		teacherWeek:     make(map[int64]int, len(a.teacherWeek)),
		teacherDays:     make(map[dayKey]map[int]int, len(a.teacherDays)),
		classDays:       make(map[dayKey]map[int]int, len(a.classDays)),
		roomDays:        make(map[dayKey]map[int]int, len(a.roomDays)),
		teacherCampus:   make(map[dayKey]map[int]int64, len(a.teacherCampus)),
		classSubjectDay: make(map[csdKey]int, len(a.classSubjectDay)),
	}
	for k, v := range a.reasons {
		clone.reasons[k] = v
	}
	for k, v := range a.teacherWeek {
		clone.teacherWeek[k] = v
	}
	for k, v := range a.teacherDays {
		clone.teacherDays[k] = clonePeriods(v)
	}
	for k, v := range a.classDays {
		clone.classDays[k] = clonePeriods(v)
	}
	for k, v := range a.roomDays {
		clone.roomDays[k] = clonePeriods(v)
	}
	for k, v := range a.teacherCampus {
		inner := make(map[int]int64, len(v))
		for p, c := range v {
			inner[p] = c
		}
		clone.teacherCampus[k] = inner
	}
	for k, v := range a.classSubjectDay {
		clone.classSubjectDay[k] = v
	}
	return clone
}

func clonePeriods(src map[int]int) map[int]int {
	dst := make(map[int]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (a *assignment) placedCount() int {
	count := 0
	for _, p := range a.placed {
		if p.slotIdx >= 0 {
			count++
		}
	}
	return count
}

func (a *assignment) place(l lesson, slotIdx, roomIdx int) {
	slot := a.grid.Slots()[slotIdx]
	a.placed[l.idx] = placement{slotIdx: slotIdx, roomIdx: roomIdx}

	setPeriod(a.teacherDays, dayKey{l.teacherID, slot.Day}, slot.Period, l.idx)
	setPeriod(a.classDays, dayKey{l.classID, slot.Day}, slot.Period, l.idx)
	room := a.snap.Rooms[roomIdx]
	setPeriod(a.roomDays, dayKey{room.ID, slot.Day}, slot.Period, l.idx)

	campusKey := dayKey{l.teacherID, slot.Day}
	if a.teacherCampus[campusKey] == nil {
		a.teacherCampus[campusKey] = make(map[int]int64)
	}
	a.teacherCampus[campusKey][slot.Period] = room.CampusID

	a.teacherWeek[l.teacherID]++
	a.classSubjectDay[csdKey{l.classID, l.subjectID, slot.Day}]++
}

func (a *assignment) unplace(lessonIdx int) {
	p := a.placed[lessonIdx]
	if p.slotIdx < 0 {
		return
	}
	l := a.lessons[lessonIdx]
	slot := a.grid.Slots()[p.slotIdx]
	room := a.snap.Rooms[p.roomIdx]

	delete(a.teacherDays[dayKey{l.teacherID, slot.Day}], slot.Period)
	delete(a.classDays[dayKey{l.classID, slot.Day}], slot.Period)
	delete(a.roomDays[dayKey{room.ID, slot.Day}], slot.Period)
	delete(a.teacherCampus[dayKey{l.teacherID, slot.Day}], slot.Period)

	a.teacherWeek[l.teacherID]--
	a.classSubjectDay[csdKey{l.classID, l.subjectID, slot.Day}]--
	a.placed[lessonIdx] = placement{slotIdx: -1, roomIdx: -1}
}

func setPeriod(m map[dayKey]map[int]int, key dayKey, period, lessonIdx int) {
	if m[key] == nil {
		m[key] = make(map[int]int)
	}
	m[key][period] = lessonIdx
}

// evaluator tests hard-constraint feasibility and computes soft-constraint
// penalties. It never mutates the assignment it reads, so candidate
// batches can be scored concurrently.
type evaluator struct {
	snap *Snapshot
	grid *Grid
	opts Options
}

func newEvaluator(snap *Snapshot, grid *Grid, opts Options) *evaluator {
	return &evaluator{snap: snap, grid: grid, opts: opts}
}

// feasible reports whether placing l at (slot, room) violates any hard
// constraint, and which kind of rule rejected it.
func (e *evaluator) feasible(a *assignment, l lesson, slotIdx, roomIdx int) (bool, int) {
	slot := e.grid.Slots()[slotIdx]

	if _, busy := a.classDays[dayKey{l.classID, slot.Day}][slot.Period]; busy {
		return false, blockClassBusy
	}

	teacherPeriods := a.teacherDays[dayKey{l.teacherID, slot.Day}]
	if _, busy := teacherPeriods[slot.Period]; busy {
		return false, blockTeacherBusy
	}
	if !e.snap.TeacherAvailable(l.teacherID, slot) {
		return false, blockTeacherUnavailable
	}
	if l.maxPerDay > 0 && len(teacherPeriods) >= l.maxPerDay {
		return false, blockTeacherLimit
	}
	if l.maxWeekly > 0 && a.teacherWeek[l.teacherID] >= l.maxWeekly {
		return false, blockTeacherLimit
	}
	if l.maxConsecutive > 0 && e.streakWith(teacherPeriods, slot.Period) > l.maxConsecutive {
		return false, blockTeacherLimit
	}

	room := e.snap.Rooms[roomIdx]
	if !room.Active {
		return false, blockRoom
	}
	if room.Capacity < l.students {
		return false, blockRoom
	}
	if l.roomType != nil && *l.roomType != "" && room.Type != *l.roomType {
		return false, blockRoom
	}
	if _, busy := a.roomDays[dayKey{room.ID, slot.Day}][slot.Period]; busy {
		return false, blockRoom
	}

	if e.opts.EnforceTravel && l.travelMinutes > 0 {
		campuses := a.teacherCampus[dayKey{l.teacherID, slot.Day}]
		for _, adjacent := range []int{slot.Period - 1, slot.Period + 1} {
			if e.grid.blockOf(adjacent) != e.grid.blockOf(slot.Period) {
				continue
			}
			if campus, ok := campuses[adjacent]; ok && campus != room.CampusID {
				return false, blockTravel
			}
		}
	}

	return true, blockNone
}

// penaltyTerm is one named soft constraint. New terms slot into the table
// without touching the search control flow.
type penaltyTerm struct {
	name    string
	weight  float64
	enabled bool
	eval    func(a *assignment) float64
}

func (e *evaluator) terms() []penaltyTerm {
	w := e.opts.Weights
	return []penaltyTerm{
		{
			name:    "teacher_window",
			weight:  w.TeacherWindow,
			enabled: e.opts.LimitWindows,
			eval:    func(a *assignment) float64 { return float64(totalGaps(e.grid, a.teacherDays)) },
		},
		{
			name:    "class_window",
			weight:  w.ClassWindow,
			enabled: true,
			eval:    func(a *assignment) float64 { return float64(totalGaps(e.grid, a.classDays)) },
		},
		{
			name:    "same_day_repeat",
			weight:  w.SameDayRepeat,
			enabled: true,
			eval: func(a *assignment) float64 {
				repeats := 0
				for _, count := range a.classSubjectDay {
					if count > 1 {
						repeats += count - 1
					}
				}
				return float64(repeats)
			},
		},
		{
			name:    "uneven_distribution",
			weight:  w.UnevenDistribution,
			enabled: e.opts.DistributeEvenly,
			eval: func(a *assignment) float64 {
				clustering := 0
				for _, count := range a.classSubjectDay {
					if count > 1 {
						clustering += count * (count - 1) / 2
					}
				}
				return float64(clustering)
			},
		},
	}
}

// totalPenalty is the weighted sum over the enabled penalty terms for the
// whole assignment.
func (e *evaluator) totalPenalty(a *assignment) float64 {
	var total float64
	for _, term := range e.terms() {
		if !term.enabled || term.weight == 0 {
			continue
		}
		total += term.weight * term.eval(a)
	}
	return total
}

// placementPenalty is the penalty increase caused by placing l at
// (slot, room). Read-only: safe for concurrent candidate scoring.
func (e *evaluator) placementPenalty(a *assignment, l lesson, slotIdx, roomIdx int) float64 {
	slot := e.grid.Slots()[slotIdx]
	w := e.opts.Weights
	var penalty float64

	if e.opts.LimitWindows && w.TeacherWindow != 0 {
		periods := a.teacherDays[dayKey{l.teacherID, slot.Day}]
		penalty += w.TeacherWindow * float64(gapDelta(e.grid, periods, slot.Period))
	}
	if w.ClassWindow != 0 {
		periods := a.classDays[dayKey{l.classID, slot.Day}]
		penalty += w.ClassWindow * float64(gapDelta(e.grid, periods, slot.Period))
	}

	sameDay := a.classSubjectDay[csdKey{l.classID, l.subjectID, slot.Day}]
	if sameDay > 0 && w.SameDayRepeat != 0 {
		penalty += w.SameDayRepeat
	}
	if e.opts.DistributeEvenly && w.UnevenDistribution != 0 {
		penalty += w.UnevenDistribution * float64(sameDay)
	}

	return penalty
}

// streakWith returns the consecutive-lesson streak the teacher would have
// after teaching extraPeriod, confined to its shift block.
func (e *evaluator) streakWith(periods map[int]int, extraPeriod int) int {
	block := e.grid.blockOf(extraPeriod)
	streak := 1
	for p := extraPeriod - 1; e.grid.blockOf(p) == block && p >= 1; p-- {
		if _, ok := periods[p]; !ok {
			break
		}
		streak++
	}
	for p := extraPeriod + 1; e.grid.blockOf(p) == block; p++ {
		if _, ok := periods[p]; !ok {
			break
		}
		streak++
	}
	return streak
}

// gapsIn counts idle periods between non-adjacent lessons within each
// shift block of one day schedule.
func gapsIn(g *Grid, periods map[int]int, extra int) int {
	if len(periods) == 0 && extra == 0 {
		return 0
	}
	gaps := 0
	prev := -1
	maxPeriod := 3 * g.PeriodsPerShift()
	for p := 1; p <= maxPeriod; p++ {
		_, occupied := periods[p]
		if p == extra {
			occupied = true
		}
		if !occupied {
			continue
		}
		if prev > 0 && g.blockOf(prev) == g.blockOf(p) && p-prev > 1 {
			gaps += p - prev - 1
		}
		prev = p
	}
	return gaps
}

func gapDelta(g *Grid, periods map[int]int, extraPeriod int) int {
	return gapsIn(g, periods, extraPeriod) - gapsIn(g, periods, 0)
}

func totalGaps(g *Grid, days map[dayKey]map[int]int) int {
	total := 0
	for _, periods := range days {
		total += gapsIn(g, periods, 0)
	}
	return total
}
