package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/horariolabs/horario-api/internal/models"
)

// RegistryRepository reads the registration data a generation run consumes.
// All of it is owned by the surrounding administration system; this side
// only lists it, always active records first-class.
type RegistryRepository struct {
	db *sqlx.DB
}

// NewRegistryRepository builds repository.
func NewRegistryRepository(db *sqlx.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

// ListSubjects returns active subjects ordered by id.
func (r *RegistryRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, name, code, weekly_lessons, lesson_minutes, color, room_type, active, created_at, updated_at
FROM subjects WHERE active = TRUE ORDER BY id ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListClasses returns active classes ordered by id.
func (r *RegistryRepository) ListClasses(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT id, name, grade, shift, students, active, created_at, updated_at
FROM classes WHERE active = TRUE ORDER BY id ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListTeachers returns active teachers ordered by id.
func (r *RegistryRepository) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, name, email, max_weekly_load, max_consecutive, max_per_day, travel_minutes, active, created_at, updated_at
FROM teachers WHERE active = TRUE ORDER BY id ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// ListRooms returns active rooms ordered by id.
func (r *RegistryRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, code, type, capacity, campus_id, active, created_at
FROM rooms WHERE active = TRUE ORDER BY id ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListRequirements returns active curriculum requirements ordered by id.
func (r *RegistryRepository) ListRequirements(ctx context.Context) ([]models.CurriculumRequirement, error) {
	const query = `SELECT id, class_id, subject_id, teacher_id, weekly_lessons, active, created_at
FROM curriculum_requirements WHERE active = TRUE ORDER BY id ASC`
	var requirements []models.CurriculumRequirement
	if err := r.db.SelectContext(ctx, &requirements, query); err != nil {
		return nil, fmt.Errorf("list curriculum requirements: %w", err)
	}
	return requirements, nil
}

// ListAvailability returns every availability window ordered by teacher.
func (r *RegistryRepository) ListAvailability(ctx context.Context) ([]models.Availability, error) {
	const query = `SELECT id, teacher_id, day, start_time, end_time, available, created_at
FROM teacher_availability ORDER BY teacher_id ASC, day ASC, start_time ASC`
	var availability []models.Availability
	if err := r.db.SelectContext(ctx, &availability, query); err != nil {
		return nil, fmt.Errorf("list teacher availability: %w", err)
	}
	return availability, nil
}
