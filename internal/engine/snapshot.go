package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/horariolabs/horario-api/internal/models"
)

// Snapshot is the immutable view of the registration data one generation
// run works against. It is built once per run; the search never mutates it.
type Snapshot struct {
	Subjects     map[int64]models.Subject
	Classes      map[int64]models.Class
	Teachers     map[int64]models.Teacher
	Rooms        []models.Room // sorted by ID for deterministic iteration
	Requirements []models.CurriculumRequirement
	Availability map[int64][]models.Availability
}

// ValidationError aggregates every inconsistency found while validating a
// snapshot. It is fatal: the run fails before any allocation is attempted.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "invalid scheduling input: " + strings.Join(e.Reasons, "; ")
}

// NewSnapshot assembles and indexes the run inputs.
func NewSnapshot(
	subjects []models.Subject,
	classes []models.Class,
	teachers []models.Teacher,
	rooms []models.Room,
	requirements []models.CurriculumRequirement,
	availability []models.Availability,
) *Snapshot {
	sortedRooms := append([]models.Room(nil), rooms...)
	sort.Slice(sortedRooms, func(i, j int) bool { return sortedRooms[i].ID < sortedRooms[j].ID })

	return &Snapshot{
		Subjects: lo.KeyBy(subjects, func(s models.Subject) int64 { return s.ID }),
		Classes:  lo.KeyBy(classes, func(c models.Class) int64 { return c.ID }),
		Teachers: lo.KeyBy(teachers, func(t models.Teacher) int64 { return t.ID }),
		Rooms:    sortedRooms,
		Requirements: lo.Filter(requirements, func(r models.CurriculumRequirement, _ int) bool {
			return r.Active
		}),
		Availability: lo.GroupBy(availability, func(a models.Availability) int64 { return a.TeacherID }),
	}
}

// Validate fails fast on contradictory input: dangling or inactive
// references, teachers with no teachable slot at all, and classes whose
// weekly demand exceeds the capacity of their shift.
func (s *Snapshot) Validate(grid *Grid) error {
	var reasons []string

	demand := make(map[int64]int)
	teachersInUse := make(map[int64]bool)

	for _, req := range s.Requirements {
		if req.WeeklyLessons < 1 {
			reasons = append(reasons, fmt.Sprintf("requirement %d: weekly lessons must be at least 1", req.ID))
		}
		subject, ok := s.Subjects[req.SubjectID]
		if !ok || !subject.Active {
			reasons = append(reasons, fmt.Sprintf("requirement %d references missing or inactive subject %d", req.ID, req.SubjectID))
		}
		class, ok := s.Classes[req.ClassID]
		if !ok || !class.Active {
			reasons = append(reasons, fmt.Sprintf("requirement %d references missing or inactive class %d", req.ID, req.ClassID))
		} else if !class.Shift.Valid() {
			reasons = append(reasons, fmt.Sprintf("class %d has unknown shift %q", class.ID, class.Shift))
		}
		teacher, ok := s.Teachers[req.TeacherID]
		if !ok || !teacher.Active {
			reasons = append(reasons, fmt.Sprintf("requirement %d references missing or inactive teacher %d", req.ID, req.TeacherID))
		}
		demand[req.ClassID] += req.WeeklyLessons
		teachersInUse[req.TeacherID] = true
	}

	for classID, lessons := range demand {
		class, ok := s.Classes[classID]
		if !ok {
			continue
		}
		capacity := len(grid.SlotsFor(class.Shift))
		if lessons > capacity {
			reasons = append(reasons, fmt.Sprintf("class %d demands %d weekly lessons but its shift only has %d slots", classID, lessons, capacity))
		}
	}

	for teacherID := range teachersInUse {
		if _, ok := s.Teachers[teacherID]; !ok {
			continue
		}
		if !s.teacherHasAnySlot(grid, teacherID) {
			reasons = append(reasons, fmt.Sprintf("teacher %d has no available slot in the weekly grid", teacherID))
		}
	}

	if len(reasons) > 0 {
		sort.Strings(reasons)
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

// TeacherAvailable applies the sparse availability rules: no entries means
// available everywhere; an explicit unavailable entry blocks its window;
// when available windows are declared, the slot must fall inside one.
func (s *Snapshot) TeacherAvailable(teacherID int64, slot Slot) bool {
	entries := s.Availability[teacherID]
	if len(entries) == 0 {
		return true
	}

	slotStart, err := parseClock(slot.Start)
	if err != nil {
		return false
	}
	slotEnd := slotStart // recomputed below from End; keep zero-width on parse failure
	if end, err := parseClock(slot.End); err == nil {
		slotEnd = end
	}

	hasWindows := false
	insideWindow := false
	for _, entry := range entries {
		covers := entry.Day == slot.Day && windowCovers(entry, slotStart, slotEnd)
		if !entry.Available {
			if covers {
				return false
			}
			continue
		}
		hasWindows = true
		if covers {
			insideWindow = true
		}
	}
	if hasWindows {
		return insideWindow
	}
	return true
}

func (s *Snapshot) teacherHasAnySlot(grid *Grid, teacherID int64) bool {
	for _, slot := range grid.Slots() {
		if s.TeacherAvailable(teacherID, slot) {
			return true
		}
	}
	return false
}

func windowCovers(entry models.Availability, slotStart, slotEnd int) bool {
	start, err := parseClock(entry.StartTime)
	if err != nil {
		return false
	}
	end, err := parseClock(entry.EndTime)
	if err != nil {
		return false
	}
	return slotStart >= start && slotEnd <= end
}

// roomCampus resolves the campus of a room index; used by the travel
// buffer check.
func (s *Snapshot) roomCampus(roomIdx int) int64 {
	if roomIdx < 0 || roomIdx >= len(s.Rooms) {
		return 0
	}
	return s.Rooms[roomIdx].CampusID
}
