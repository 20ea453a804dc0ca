package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/horariolabs/horario-api/internal/dto"
	"github.com/horariolabs/horario-api/internal/engine"
	"github.com/horariolabs/horario-api/internal/models"
	"github.com/horariolabs/horario-api/internal/repository"
	"github.com/horariolabs/horario-api/pkg/config"
	appErrors "github.com/horariolabs/horario-api/pkg/errors"
)

// TimetableRepo is the persistence surface the service needs.
type TimetableRepo interface {
	Create(ctx context.Context, t *models.Timetable) error
	GetByID(ctx context.Context, id int64) (*models.Timetable, error)
	List(ctx context.Context, year, limit, offset int) ([]models.Timetable, int, error)
	Update(ctx context.Context, exec sqlx.ExtContext, t *models.Timetable) error
	UpdateResult(ctx context.Context, exec sqlx.ExtContext, t *models.Timetable) error
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteLessons(ctx context.Context, exec sqlx.ExtContext, timetableID int64) error
	InsertLessons(ctx context.Context, exec sqlx.ExtContext, lessons []models.Lesson) error
	ListLessons(ctx context.Context, timetableID int64) ([]models.Lesson, error)
	ListLessonsByClass(ctx context.Context, timetableID, classID int64) ([]models.Lesson, error)
	ListLessonsByTeacher(ctx context.Context, timetableID, teacherID int64) ([]models.Lesson, error)
}

// RegistryRepo loads the registration data a run snapshots.
type RegistryRepo interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	ListClasses(ctx context.Context) ([]models.Class, error)
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListRequirements(ctx context.Context) ([]models.CurriculumRequirement, error)
	ListAvailability(ctx context.Context) ([]models.Availability, error)
}

// Cache is the subset of the cache repository the service uses.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// RunObserver receives generation outcome metrics.
type RunObserver interface {
	ObserveGeneration(elapsed time.Duration, score float64, complete bool)
}

// runRegistry enforces at most one active generation run per timetable.
type runRegistry struct {
	mu   sync.Mutex
	runs map[int64]string
}

func newRunRegistry() *runRegistry {
	return &runRegistry{runs: make(map[int64]string)}
}

func (r *runRegistry) acquire(id int64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.runs[id]; busy {
		return "", false
	}
	token := uuid.NewString()
	r.runs[id] = token
	return token, true
}

func (r *runRegistry) release(id int64, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runs[id] == token {
		delete(r.runs, id)
	}
}

// TimetableService owns the timetable lifecycle and runs the generation
// engine against a point-in-time snapshot of the registration data.
type TimetableService struct {
	db         *sqlx.DB
	timetables TimetableRepo
	registry   RegistryRepo
	cache      Cache
	observer   RunObserver
	validate   *validator.Validate
	logger     *zap.Logger
	cacheTTL   time.Duration
	engineCfg  config.EngineConfig
	runs       *runRegistry
}

// NewTimetableService wires the service.
func NewTimetableService(
	db *sqlx.DB,
	timetables TimetableRepo,
	registry RegistryRepo,
	cache Cache,
	observer RunObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cacheTTL time.Duration,
	engineCfg config.EngineConfig,
) *TimetableService {
	return &TimetableService{
		db:         db,
		timetables: timetables,
		registry:   registry,
		cache:      cache,
		observer:   observer,
		validate:   validate,
		logger:     logger,
		cacheTTL:   cacheTTL,
		engineCfg:  engineCfg,
		runs:       newRunRegistry(),
	}
}

// Create registers a new DRAFT timetable.
func (s *TimetableService) Create(ctx context.Context, req dto.CreateTimetableRequest) (*models.Timetable, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", 400, "invalid timetable payload")
	}
	if req.Semester == 0 {
		req.Semester = 1
	}
	t := &models.Timetable{
		Name:       req.Name,
		Year:       req.Year,
		Semester:   req.Semester,
		Pendencies: types.JSONText("[]"),
	}
	if err := s.timetables.Create(ctx, t); err != nil {
		return nil, appErrors.Wrap(err, "TIMETABLE_CREATE_FAILED", 500, "failed to create timetable")
	}
	s.logger.Info("timetable created", zap.Int64("id", t.ID), zap.String("name", t.Name))
	return t, nil
}

// Get returns a timetable by id.
func (s *TimetableService) Get(ctx context.Context, id int64) (*models.Timetable, error) {
	t, err := s.timetables.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, "TIMETABLE_LOOKUP_FAILED", 500, "failed to load timetable")
	}
	if t == nil {
		return nil, appErrors.ErrNotFound
	}
	return t, nil
}

// List pages timetables.
func (s *TimetableService) List(ctx context.Context, q dto.TimetableListQuery) ([]models.Timetable, *models.Pagination, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}
	timetables, total, err := s.timetables.List(ctx, q.Year, q.PageSize, (q.Page-1)*q.PageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, "TIMETABLE_LIST_FAILED", 500, "failed to list timetables")
	}
	return timetables, &models.Pagination{Page: q.Page, PageSize: q.PageSize, TotalCount: total}, nil
}

// Update renames a timetable or advances its lifecycle. APPROVED is only
// reachable from FINALIZED, and an approved timetable is immutable.
func (s *TimetableService) Update(ctx context.Context, id int64, req dto.UpdateTimetableRequest) (*models.Timetable, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", 400, "invalid timetable payload")
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TimetableStatusApproved {
		return nil, appErrors.ErrFinalized
	}
	if t.Status == models.TimetableStatusInProgress {
		return nil, appErrors.ErrRunInProgress
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Status != nil {
		next := models.TimetableStatus(*req.Status)
		if next == models.TimetableStatusApproved && t.Status != models.TimetableStatusFinalized {
			return nil, appErrors.New("INVALID_TRANSITION", 412, "only a finalized timetable can be approved")
		}
		if next == models.TimetableStatusInProgress {
			return nil, appErrors.New("INVALID_TRANSITION", 412, "IN_PROGRESS is set by the generation run")
		}
		t.Status = next
	}

	if err := s.timetables.Update(ctx, nil, t); err != nil {
		return nil, appErrors.Wrap(err, "TIMETABLE_UPDATE_FAILED", 500, "failed to update timetable")
	}
	s.invalidate(ctx, id)
	return t, nil
}

// Delete removes a timetable and its lessons.
func (s *TimetableService) Delete(ctx context.Context, id int64) error {
	if token, ok := s.runs.acquire(id); ok {
		defer s.runs.release(id, token)
	} else {
		return appErrors.ErrRunInProgress
	}

	deleted, err := s.timetables.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, "TIMETABLE_DELETE_FAILED", 500, "failed to delete timetable")
	}
	if !deleted {
		return appErrors.ErrNotFound
	}
	s.invalidate(ctx, id)
	return nil
}

// Generate runs the engine for one timetable and atomically replaces its
// lesson set with the outcome. At most one run per timetable may be active.
func (s *TimetableService) Generate(ctx context.Context, id int64, req dto.GenerateRequest) (*dto.GenerateResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", 400, "invalid generation payload")
	}

	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TimetableStatusApproved {
		return nil, appErrors.ErrFinalized
	}

	token, ok := s.runs.acquire(id)
	if !ok {
		return nil, appErrors.ErrRunInProgress
	}
	defer s.runs.release(id, token)

	previousStatus := t.Status
	t.Status = models.TimetableStatusInProgress
	if err := s.timetables.Update(ctx, nil, t); err != nil {
		return nil, appErrors.Wrap(err, "TIMETABLE_UPDATE_FAILED", 500, "failed to mark timetable in progress")
	}

	res, runErr := s.run(ctx, req)
	if runErr != nil {
		t.Status = previousStatus
		if err := s.timetables.Update(ctx, nil, t); err != nil {
			s.logger.Error("failed to restore timetable status after run error", zap.Int64("id", id), zap.Error(err))
		}
		return nil, runErr
	}

	if err := s.persistResult(ctx, t, res); err != nil {
		t.Status = previousStatus
		if uerr := s.timetables.Update(ctx, nil, t); uerr != nil {
			s.logger.Error("failed to restore timetable status after persist error", zap.Int64("id", id), zap.Error(uerr))
		}
		return nil, err
	}

	s.invalidate(ctx, id)
	if s.observer != nil {
		s.observer.ObserveGeneration(res.Elapsed, res.Score, res.Complete())
	}
	s.logger.Info("timetable generated",
		zap.Int64("id", id),
		zap.Int("allocated", res.AllocatedLessons),
		zap.Int("total", res.TotalLessons),
		zap.Float64("score", res.Score),
		zap.Duration("elapsed", res.Elapsed),
	)

	return &dto.GenerateResponse{
		Success:          true,
		AllocatedLessons: res.AllocatedLessons,
		TotalLessons:     res.TotalLessons,
		QualityScore:     res.Score,
		ElapsedSeconds:   res.Elapsed.Seconds(),
		Pendencies:       append([]models.Pendency{}, res.Pendencies...),
	}, nil
}

// run snapshots the registration data and executes the engine under the
// wall-clock budget.
func (s *TimetableService) run(ctx context.Context, req dto.GenerateRequest) (*engine.Result, error) {
	subjects, err := s.registry.ListSubjects(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "SNAPSHOT_FAILED", 500, "failed to load subjects")
	}
	classes, err := s.registry.ListClasses(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "SNAPSHOT_FAILED", 500, "failed to load classes")
	}
	teachers, err := s.registry.ListTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "SNAPSHOT_FAILED", 500, "failed to load teachers")
	}
	rooms, err := s.registry.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "SNAPSHOT_FAILED", 500, "failed to load rooms")
	}
	requirements, err := s.registry.ListRequirements(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "SNAPSHOT_FAILED", 500, "failed to load curriculum requirements")
	}
	availability, err := s.registry.ListAvailability(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "SNAPSHOT_FAILED", 500, "failed to load teacher availability")
	}

	cal := s.engineCfg.Calendar
	grid, err := engine.NewGrid(engine.GridConfig{
		Days:            cal.ActiveDays,
		PeriodsPerShift: cal.PeriodsPerShift,
		LessonMinutes:   cal.LessonMinutes,
		MorningStart:    cal.MorningStart,
		AfternoonStart:  cal.AfternoonStart,
		EveningStart:    cal.EveningStart,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "INVALID_CALENDAR", 500, "invalid calendar configuration")
	}

	budget := s.engineCfg.DefaultBudget
	if req.MaxSeconds > 0 {
		budget = time.Duration(req.MaxSeconds) * time.Second
	}
	if s.engineCfg.MaxBudget > 0 && budget > s.engineCfg.MaxBudget {
		budget = s.engineCfg.MaxBudget
	}
	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	seed := s.engineCfg.BaseSeed
	if req.Seed > 0 {
		seed = req.Seed
	}

	snap := engine.NewSnapshot(subjects, classes, teachers, rooms, requirements, availability)
	eng := engine.New(snap, grid, engine.Config{
		Options: engine.Options{
			LimitWindows:     req.LimitWindows,
			EnforceTravel:    req.EnforceTravel,
			DistributeEvenly: req.DistributeEvenly,
			Weights: engine.Weights{
				TeacherWindow:      s.engineCfg.Weights.TeacherWindow,
				ClassWindow:        s.engineCfg.Weights.ClassWindow,
				SameDayRepeat:      s.engineCfg.Weights.SameDayRepeat,
				UnevenDistribution: s.engineCfg.Weights.UnevenDistribution,
			},
		},
		Trajectories: s.engineCfg.Trajectories,
		Seed:         seed,
	})

	res, err := eng.Run(runCtx)
	if err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			return nil, appErrors.Wrap(err, "INVALID_SCHEDULING_INPUT", 422, verr.Error())
		}
		return nil, appErrors.Wrap(err, "GENERATION_FAILED", 500, "generation run failed")
	}
	return res, nil
}

// persistResult replaces the timetable's lessons and outcome columns in one
// transaction.
func (s *TimetableService) persistResult(ctx context.Context, t *models.Timetable, res *engine.Result) error {
	pendencies := res.Pendencies
	if pendencies == nil {
		pendencies = []models.Pendency{}
	}
	raw, err := json.Marshal(pendencies)
	if err != nil {
		return appErrors.Wrap(err, "RESULT_ENCODE_FAILED", 500, "failed to encode pendencies")
	}

	lessons := make([]models.Lesson, 0, len(res.Allocations))
	for _, alloc := range res.Allocations {
		lessons = append(lessons, models.Lesson{
			TimetableID: t.ID,
			ClassID:     alloc.ClassID,
			SubjectID:   alloc.SubjectID,
			TeacherID:   alloc.TeacherID,
			RoomID:      alloc.RoomID,
			Day:         alloc.Day,
			Period:      alloc.Period,
			StartTime:   alloc.Start,
			EndTime:     alloc.End,
		})
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return appErrors.Wrap(err, "TX_BEGIN_FAILED", 500, "failed to open transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error("rollback failed", zap.Int64("id", t.ID), zap.Error(rbErr))
			}
		}
	}()

	if err = s.timetables.DeleteLessons(ctx, tx, t.ID); err != nil {
		return appErrors.Wrap(err, "RESULT_PERSIST_FAILED", 500, "failed to clear previous lessons")
	}
	if err = s.timetables.InsertLessons(ctx, tx, lessons); err != nil {
		return appErrors.Wrap(err, "RESULT_PERSIST_FAILED", 500, "failed to insert lessons")
	}

	t.Status = models.TimetableStatusFinalized
	t.TotalLessons = res.TotalLessons
	t.AllocatedLessons = res.AllocatedLessons
	t.QualityScore = res.Score
	t.Pendencies = types.JSONText(raw)
	if err = s.timetables.UpdateResult(ctx, tx, t); err != nil {
		return appErrors.Wrap(err, "RESULT_PERSIST_FAILED", 500, "failed to update timetable outcome")
	}

	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, "TX_COMMIT_FAILED", 500, "failed to commit generation result")
	}
	return nil
}

// Lessons returns the full weekly schedule, cached.
func (s *TimetableService) Lessons(ctx context.Context, id int64) ([]models.Lesson, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	key := repository.LessonsKey(id)
	var cached []models.Lesson
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}
	lessons, err := s.timetables.ListLessons(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, "LESSON_LIST_FAILED", 500, "failed to list lessons")
	}
	s.cacheSet(ctx, key, lessons)
	return lessons, nil
}

// LessonsByClass returns one class's weekly schedule, cached.
func (s *TimetableService) LessonsByClass(ctx context.Context, id, classID int64) ([]models.Lesson, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	key := repository.ClassLessonsKey(id, classID)
	var cached []models.Lesson
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}
	lessons, err := s.timetables.ListLessonsByClass(ctx, id, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, "LESSON_LIST_FAILED", 500, "failed to list class lessons")
	}
	s.cacheSet(ctx, key, lessons)
	return lessons, nil
}

// LessonsByTeacher returns one teacher's weekly schedule, cached.
func (s *TimetableService) LessonsByTeacher(ctx context.Context, id, teacherID int64) ([]models.Lesson, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	key := repository.TeacherLessonsKey(id, teacherID)
	var cached []models.Lesson
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}
	lessons, err := s.timetables.ListLessonsByTeacher(ctx, id, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, "LESSON_LIST_FAILED", 500, "failed to list teacher lessons")
	}
	s.cacheSet(ctx, key, lessons)
	return lessons, nil
}

func (s *TimetableService) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *TimetableService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.DeleteByPattern(ctx, repository.TimetablePattern(id)); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Int64("id", id), zap.Error(err))
	}
}
