package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horariolabs/horario-api/internal/models"
)

func newMockRepo(t *testing.T) (*TimetableRepository, sqlmock.Sqlmock) {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rawDB.Close() })
	return NewTimetableRepository(sqlx.NewDb(rawDB, "sqlmock")), mock
}

func TestTimetableRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO timetables").
		WithArgs("2026/1", 2026, 1, string(models.TimetableStatusDraft), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	tt := &models.Timetable{Name: "2026/1", Year: 2026, Semester: 1}
	require.NoError(t, repo.Create(context.Background(), tt))

	assert.Equal(t, int64(7), tt.ID)
	assert.Equal(t, models.TimetableStatusDraft, tt.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM timetables WHERE id").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tt, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, tt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "name", "year", "semester", "status",
		"total_lessons", "allocated_lessons", "quality_score", "pendencies",
		"created_at", "updated_at",
	}).AddRow(3, "2026/1", 2026, 1, "FINALIZED", 30, 28, 87.5, []byte("[]"), now, now)

	mock.ExpectQuery("SELECT (.+) FROM timetables WHERE id").
		WithArgs(int64(3)).
		WillReturnRows(rows)

	tt, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, tt)
	assert.Equal(t, models.TimetableStatusFinalized, tt.Status)
	assert.Equal(t, 28, tt.AllocatedLessons)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListFiltersByYear(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM timetables WHERE year").
		WithArgs(2026).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM timetables WHERE year").
		WithArgs(2026, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "year", "semester", "status",
			"total_lessons", "allocated_lessons", "quality_score", "pendencies",
			"created_at", "updated_at",
		}).AddRow(1, "2026/1", 2026, 1, "DRAFT", 0, 0, 0.0, []byte("[]"), now, now))

	timetables, total, err := repo.List(context.Background(), 2026, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, timetables, 1)
	assert.Equal(t, 2026, timetables[0].Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM timetables WHERE id").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM timetables WHERE id").
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), 6)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceLessonsInTx(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM lessons WHERE timetable_id").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO lessons").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	db := repo.db
	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteLessons(context.Background(), tx, 3))
	require.NoError(t, repo.InsertLessons(context.Background(), tx, []models.Lesson{
		{TimetableID: 3, ClassID: 1, SubjectID: 1, TeacherID: 1, RoomID: 1, Day: 1, Period: 1, StartTime: "07:30", EndTime: "08:20"},
	}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
