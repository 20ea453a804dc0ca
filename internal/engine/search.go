package engine

import (
	"context"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"github.com/horariolabs/horario-api/internal/models"
	"github.com/horariolabs/horario-api/pkg/workerpool"
)

// State is the lifecycle phase of one generation run.
type State int32

const (
	StateInitializing State = iota
	StateConstructing
	StateRepairing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "INITIALIZING"
	case StateConstructing:
		return "CONSTRUCTING"
	case StateRepairing:
		return "REPAIRING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Config tunes one engine run.
type Config struct {
	Options      Options
	Trajectories int   // parallel repair trajectories, default 4
	Seed         int64 // base seed; trajectory i uses Seed+i
	Workers      int   // candidate evaluation fan-out, 0 = GOMAXPROCS
}

// Engine runs the two-phase timetable search: a most-constrained-first
// constructive pass, then parallel hill-climbing repair until the budget
// carried by the context runs out. The engine is single-use.
type Engine struct {
	snap     *Snapshot
	grid     *Grid
	cfg      Config
	eval     *evaluator
	shiftIdx map[models.Shift][]int
	state    atomic.Int32
}

func New(snap *Snapshot, grid *Grid, cfg Config) *Engine {
	if cfg.Trajectories <= 0 {
		cfg.Trajectories = 4
	}
	e := &Engine{
		snap:     snap,
		grid:     grid,
		cfg:      cfg,
		eval:     newEvaluator(snap, grid, cfg.Options),
		shiftIdx: make(map[models.Shift][]int),
	}
	for _, shift := range []models.Shift{models.ShiftMorning, models.ShiftAfternoon, models.ShiftEvening, models.ShiftFull} {
		var idxs []int
		for _, slot := range grid.SlotsFor(shift) {
			if i, ok := grid.IndexOf(slot); ok {
				idxs = append(idxs, i)
			}
		}
		e.shiftIdx[shift] = idxs
	}
	return e
}

// State reports the current lifecycle phase; safe to read from other
// goroutines while Run is in flight.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// Run executes the search. Context cancellation and deadline expiry are
// cooperative stop signals, not failures: the best assignment found so far
// is returned. Only invalid input fails the run.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	e.setState(StateInitializing)
	if err := e.snap.Validate(e.grid); err != nil {
		e.setState(StateFailed)
		return nil, err
	}

	base := newAssignment(e.snap, e.grid)

	e.setState(StateConstructing)
	e.construct(ctx, base)

	e.setState(StateRepairing)
	best := e.repair(ctx, base)

	e.assignReasons(best)
	e.setState(StateDone)
	return e.buildResult(best, time.Since(start)), nil
}

// slotCandidate is the outcome of probing one slot for one lesson: the
// cheapest feasible room, or the hard-constraint kinds that rejected it.
type slotCandidate struct {
	slotIdx int
	roomIdx int
	penalty float64
	ok      bool
	blocks  [blockTravel + 1]int
}

// slotBest probes every room for l at slotIdx. Rooms are scanned in
// canonical order, so equal-penalty candidates resolve to the lowest room.
func (e *Engine) slotBest(a *assignment, l lesson, slotIdx int) slotCandidate {
	cand := slotCandidate{slotIdx: slotIdx, roomIdx: -1}
	for roomIdx := range e.snap.Rooms {
		ok, kind := e.eval.feasible(a, l, slotIdx, roomIdx)
		if !ok {
			cand.blocks[kind]++
			continue
		}
		cand.ok = true
		cand.roomIdx = roomIdx
		cand.penalty = e.eval.placementPenalty(a, l, slotIdx, roomIdx)
		break
	}
	return cand
}

// bestCandidate scans every slot of the lesson's shift concurrently and
// reduces in canonical slot order, so the winner is independent of worker
// scheduling: lowest penalty, then earliest slot, then lowest room.
func (e *Engine) bestCandidate(ctx context.Context, a *assignment, l lesson) (slotCandidate, [blockTravel + 1]int) {
	slotIdxs := e.shiftSlots(l.shift)
	results, _ := workerpool.Map(ctx, e.cfg.Workers, slotIdxs, func(_ context.Context, slotIdx int) slotCandidate {
		return e.slotBest(a, l, slotIdx)
	})

	var tally [blockTravel + 1]int
	best := slotCandidate{slotIdx: -1, roomIdx: -1}
	for _, cand := range results {
		for kind, n := range cand.blocks {
			tally[kind] += n
		}
		if !cand.ok {
			continue
		}
		if !best.ok || cand.penalty < best.penalty {
			best = cand
		}
	}
	return best, tally
}

// construct places lessons greedily, hardest first. Lessons with no
// feasible placement are deferred to the repair phase.
func (e *Engine) construct(ctx context.Context, a *assignment) {
	order := e.constructionOrder(a)
	for _, li := range order {
		l := a.lessons[li]
		if ctx.Err() != nil {
			a.deferred = append(a.deferred, li)
			continue
		}
		best, _ := e.bestCandidate(ctx, a, l)
		if best.ok {
			a.place(l, best.slotIdx, best.roomIdx)
		} else {
			a.deferred = append(a.deferred, li)
		}
	}
}

// constructionOrder sorts lesson instances by how few feasible placements
// they start with. Scarce lessons go first while the grid is still empty.
func (e *Engine) constructionOrder(a *assignment) []int {
	type ranked struct {
		idx     int
		options int
	}
	items := make([]int, len(a.lessons))
	for i := range items {
		items[i] = i
	}
	counts, _ := workerpool.Map(context.Background(), e.cfg.Workers, items, func(_ context.Context, li int) ranked {
		l := a.lessons[li]
		options := 0
		for _, slotIdx := range e.shiftSlots(l.shift) {
			for roomIdx := range e.snap.Rooms {
				if ok, _ := e.eval.feasible(a, l, slotIdx, roomIdx); ok {
					options++
				}
			}
		}
		return ranked{idx: li, options: options}
	})

	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].options != counts[j].options {
			return counts[i].options < counts[j].options
		}
		return counts[i].idx < counts[j].idx
	})

	order := make([]int, len(counts))
	for i, r := range counts {
		order[i] = r.idx
	}
	return order
}

// repair clones the constructed assignment into independent hill-climbing
// trajectories, each with its own derived seed, and keeps the best one.
// The shared context carries the wall-clock budget.
func (e *Engine) repair(ctx context.Context, base *assignment) *assignment {
	k := e.cfg.Trajectories
	trajectories := make([]*assignment, k)
	workerpool.Run(ctx, k, func(ctx context.Context, i int) {
		rng := rand.New(rand.NewSource(e.cfg.Seed + int64(i)))
		a := base.Clone()
		e.climb(ctx, a, rng)
		trajectories[i] = a
	})

	best := base
	bestPlaced := base.placedCount()
	bestPenalty := e.eval.totalPenalty(base)
	for _, a := range trajectories {
		if a == nil {
			continue
		}
		placed := a.placedCount()
		penalty := e.eval.totalPenalty(a)
		if placed > bestPlaced || (placed == bestPlaced && penalty < bestPenalty-1e-9) {
			best, bestPlaced, bestPenalty = a, placed, penalty
		}
	}
	return best
}

// climb runs strict-improvement local search: resolve deferred lessons,
// relocate placed ones to cheaper slots, and swap pairs. A full cycle with
// no improvement terminates the trajectory early.
func (e *Engine) climb(ctx context.Context, a *assignment, rng *rand.Rand) {
	for {
		if ctx.Err() != nil {
			return
		}
		improved := false
		if e.resolveDeferred(ctx, a) {
			improved = true
		}
		if e.relocateSweep(ctx, a, rng) {
			improved = true
		}
		if e.swapSweep(ctx, a, rng) {
			improved = true
		}
		if !improved {
			return
		}
	}
}

// resolveDeferred retries every deferred lesson against the current grid.
// Placing one is always an improvement regardless of penalty.
func (e *Engine) resolveDeferred(ctx context.Context, a *assignment) bool {
	if len(a.deferred) == 0 {
		return false
	}
	improved := false
	var still []int
	for _, li := range a.deferred {
		if ctx.Err() != nil {
			still = append(still, li)
			continue
		}
		l := a.lessons[li]
		best := e.bestCandidateSeq(a, l)
		if best.ok {
			a.place(l, best.slotIdx, best.roomIdx)
			improved = true
		} else {
			still = append(still, li)
		}
	}
	a.deferred = still
	return improved
}

// bestCandidateSeq is the sequential twin of bestCandidate, used inside
// trajectories where the goroutines are already saturated.
func (e *Engine) bestCandidateSeq(a *assignment, l lesson) slotCandidate {
	best := slotCandidate{slotIdx: -1, roomIdx: -1}
	for _, slotIdx := range e.shiftSlots(l.shift) {
		cand := e.slotBest(a, l, slotIdx)
		if !cand.ok {
			continue
		}
		if !best.ok || cand.penalty < best.penalty {
			best = cand
		}
	}
	return best
}

// relocateSweep visits placed lessons in a seed-determined order and moves
// each to a strictly cheaper feasible placement if one exists.
func (e *Engine) relocateSweep(ctx context.Context, a *assignment, rng *rand.Rand) bool {
	improved := false
	for _, li := range rng.Perm(len(a.lessons)) {
		if ctx.Err() != nil {
			return improved
		}
		old := a.placed[li]
		if old.slotIdx < 0 {
			continue
		}
		l := a.lessons[li]
		a.unplace(li)
		oldPenalty := e.eval.placementPenalty(a, l, old.slotIdx, old.roomIdx)
		best := e.bestCandidateSeq(a, l)
		if best.ok && best.penalty < oldPenalty-1e-9 {
			a.place(l, best.slotIdx, best.roomIdx)
			improved = true
		} else {
			a.place(l, old.slotIdx, old.roomIdx)
		}
	}
	return improved
}

// swapSweep tries random pairwise slot exchanges between placed lessons.
// A swap commits only when both directions are feasible and the combined
// penalty strictly drops.
func (e *Engine) swapSweep(ctx context.Context, a *assignment, rng *rand.Rand) bool {
	placed := make([]int, 0, len(a.lessons))
	for li, p := range a.placed {
		if p.slotIdx >= 0 {
			placed = append(placed, li)
		}
	}
	if len(placed) < 2 {
		return false
	}

	improved := false
	for attempt := 0; attempt < len(placed); attempt++ {
		if ctx.Err() != nil {
			return improved
		}
		i := placed[rng.Intn(len(placed))]
		j := placed[rng.Intn(len(placed))]
		if i == j {
			continue
		}
		if e.trySwap(a, i, j) {
			improved = true
		}
	}
	return improved
}

// trySwap exchanges the placements of lessons i and j when the exchange is
// feasible and strictly cheaper. The original placement is restored
// otherwise.
func (e *Engine) trySwap(a *assignment, i, j int) bool {
	pi, pj := a.placed[i], a.placed[j]
	li, lj := a.lessons[i], a.lessons[j]

	a.unplace(i)
	a.unplace(j)

	restore := func() {
		a.place(li, pi.slotIdx, pi.roomIdx)
		a.place(lj, pj.slotIdx, pj.roomIdx)
	}

	oldCost := e.eval.placementPenalty(a, li, pi.slotIdx, pi.roomIdx)
	a.place(li, pi.slotIdx, pi.roomIdx)
	oldCost += e.eval.placementPenalty(a, lj, pj.slotIdx, pj.roomIdx)
	a.unplace(i)

	okI, _ := e.eval.feasible(a, li, pj.slotIdx, pj.roomIdx)
	if !okI {
		restore()
		return false
	}
	newCost := e.eval.placementPenalty(a, li, pj.slotIdx, pj.roomIdx)
	a.place(li, pj.slotIdx, pj.roomIdx)

	okJ, _ := e.eval.feasible(a, lj, pi.slotIdx, pi.roomIdx)
	if !okJ {
		a.unplace(i)
		restore()
		return false
	}
	newCost += e.eval.placementPenalty(a, lj, pi.slotIdx, pi.roomIdx)
	a.place(lj, pi.slotIdx, pi.roomIdx)

	if newCost < oldCost-1e-9 {
		return true
	}
	a.unplace(i)
	a.unplace(j)
	restore()
	return false
}

// assignReasons gives every still-deferred lesson a pendency reason by
// tallying which hard constraint rejected the most candidate placements.
// A lesson that still has a feasible placement was only deferred because
// the run stopped early, and is reported as such.
func (e *Engine) assignReasons(a *assignment) {
	for _, li := range a.deferred {
		l := a.lessons[li]
		var tally [blockTravel + 1]int
		open := false
		for _, slotIdx := range e.shiftSlots(l.shift) {
			cand := e.slotBest(a, l, slotIdx)
			if cand.ok {
				open = true
			}
			for kind, n := range cand.blocks {
				tally[kind] += n
			}
		}
		if open {
			a.reasons[li] = models.PendencyBudgetExpired
			continue
		}
		a.reasons[li] = reasonFromTally(tally)
	}
}

// shiftSlots returns the canonical slot indexes usable by a class of the
// given shift. The per-shift lists are precomputed in New.
func (e *Engine) shiftSlots(shift models.Shift) []int {
	return e.shiftIdx[shift]
}
