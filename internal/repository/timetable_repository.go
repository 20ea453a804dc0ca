package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/horariolabs/horario-api/internal/models"
)

// TimetableRepository persists timetables and the lessons they own. Lesson
// writes happen inside the caller's transaction so a re-generation replaces
// the previous allocation atomically.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository builds repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new timetable in DRAFT and fills in its generated id.
func (r *TimetableRepository) Create(ctx context.Context, t *models.Timetable) error {
	const query = `
INSERT INTO timetables (name, year, semester, status, total_lessons, allocated_lessons, quality_score, pendencies, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, 0, 0, '[]', $5, $5)
RETURNING id`
	now := time.Now().UTC()
	t.Status = models.TimetableStatusDraft
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := r.db.QueryRowxContext(ctx, query, t.Name, t.Year, t.Semester, t.Status, now).Scan(&t.ID); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// GetByID returns the timetable or nil when it does not exist.
func (r *TimetableRepository) GetByID(ctx context.Context, id int64) (*models.Timetable, error) {
	const query = `SELECT id, name, year, semester, status, total_lessons, allocated_lessons, quality_score, pendencies, created_at, updated_at
FROM timetables WHERE id = $1`
	var t models.Timetable
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get timetable %d: %w", id, err)
	}
	return &t, nil
}

// List pages timetables, optionally filtered by school year.
func (r *TimetableRepository) List(ctx context.Context, year, limit, offset int) ([]models.Timetable, int, error) {
	where := ""
	args := []interface{}{}
	if year > 0 {
		where = "WHERE year = $1"
		args = append(args, year)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM timetables %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT id, name, year, semester, status, total_lessons, allocated_lessons, quality_score, pendencies, created_at, updated_at
FROM timetables %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, total, nil
}

// Update persists name and status changes.
func (r *TimetableRepository) Update(ctx context.Context, exec sqlx.ExtContext, t *models.Timetable) error {
	const query = `UPDATE timetables SET name = $1, status = $2, updated_at = $3 WHERE id = $4`
	t.UpdatedAt = time.Now().UTC()
	if _, err := r.exec(exec).ExecContext(ctx, query, t.Name, t.Status, t.UpdatedAt, t.ID); err != nil {
		return fmt.Errorf("update timetable %d: %w", t.ID, err)
	}
	return nil
}

// UpdateResult writes the run outcome columns of a timetable.
func (r *TimetableRepository) UpdateResult(ctx context.Context, exec sqlx.ExtContext, t *models.Timetable) error {
	const query = `
UPDATE timetables
SET status = $1, total_lessons = $2, allocated_lessons = $3, quality_score = $4, pendencies = $5, updated_at = $6
WHERE id = $7`
	t.UpdatedAt = time.Now().UTC()
	if _, err := r.exec(exec).ExecContext(ctx, query,
		t.Status, t.TotalLessons, t.AllocatedLessons, t.QualityScore, t.Pendencies, t.UpdatedAt, t.ID); err != nil {
		return fmt.Errorf("update timetable %d result: %w", t.ID, err)
	}
	return nil
}

// Delete removes a timetable and, via cascade, its lessons. Returns whether
// a row was deleted.
func (r *TimetableRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete timetable %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete timetable %d: %w", id, err)
	}
	return rows > 0, nil
}

// DeleteLessons drops every lesson of a timetable.
func (r *TimetableRepository) DeleteLessons(ctx context.Context, exec sqlx.ExtContext, timetableID int64) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM lessons WHERE timetable_id = $1`, timetableID); err != nil {
		return fmt.Errorf("delete lessons of timetable %d: %w", timetableID, err)
	}
	return nil
}

// InsertLessons writes a fresh lesson set for a timetable.
func (r *TimetableRepository) InsertLessons(ctx context.Context, exec sqlx.ExtContext, lessons []models.Lesson) error {
	if len(lessons) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO lessons (timetable_id, class_id, subject_id, teacher_id, room_id, day, period, start_time, end_time, created_at)
VALUES (:timetable_id, :class_id, :subject_id, :teacher_id, :room_id, :day, :period, :start_time, :end_time, :created_at)`

	for i := range lessons {
		lesson := &lessons[i]
		if lesson.CreatedAt.IsZero() {
			lesson.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, lesson); err != nil {
			return fmt.Errorf("insert lesson for timetable %d: %w", lesson.TimetableID, err)
		}
	}
	return nil
}

const lessonColumns = `id, timetable_id, class_id, subject_id, teacher_id, room_id, day, period, start_time, end_time, created_at`

// ListLessons returns every lesson of a timetable in weekly order.
func (r *TimetableRepository) ListLessons(ctx context.Context, timetableID int64) ([]models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons WHERE timetable_id = $1 ORDER BY day ASC, period ASC, class_id ASC`, lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, timetableID); err != nil {
		return nil, fmt.Errorf("list lessons of timetable %d: %w", timetableID, err)
	}
	return lessons, nil
}

// ListLessonsByClass returns one class's weekly schedule.
func (r *TimetableRepository) ListLessonsByClass(ctx context.Context, timetableID, classID int64) ([]models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons WHERE timetable_id = $1 AND class_id = $2 ORDER BY day ASC, period ASC`, lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, timetableID, classID); err != nil {
		return nil, fmt.Errorf("list lessons of class %d: %w", classID, err)
	}
	return lessons, nil
}

// ListLessonsByTeacher returns one teacher's weekly schedule.
func (r *TimetableRepository) ListLessonsByTeacher(ctx context.Context, timetableID, teacherID int64) ([]models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons WHERE timetable_id = $1 AND teacher_id = $2 ORDER BY day ASC, period ASC`, lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, timetableID, teacherID); err != nil {
		return nil, fmt.Errorf("list lessons of teacher %d: %w", teacherID, err)
	}
	return lessons, nil
}
