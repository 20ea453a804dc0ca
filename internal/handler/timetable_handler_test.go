package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horariolabs/horario-api/internal/dto"
	"github.com/horariolabs/horario-api/internal/models"
	appErrors "github.com/horariolabs/horario-api/pkg/errors"
)

type stubTimetableService struct {
	timetable   *models.Timetable
	generate    *dto.GenerateResponse
	generateErr error
	lessons     []models.Lesson
	err         error
}

func (s *stubTimetableService) Create(_ context.Context, req dto.CreateTimetableRequest) (*models.Timetable, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Timetable{ID: 1, Name: req.Name, Year: req.Year, Status: models.TimetableStatusDraft}, nil
}

func (s *stubTimetableService) Get(context.Context, int64) (*models.Timetable, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.timetable, nil
}

func (s *stubTimetableService) List(context.Context, dto.TimetableListQuery) ([]models.Timetable, *models.Pagination, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return []models.Timetable{*s.timetable}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (s *stubTimetableService) Update(context.Context, int64, dto.UpdateTimetableRequest) (*models.Timetable, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.timetable, nil
}

func (s *stubTimetableService) Delete(context.Context, int64) error { return s.err }

func (s *stubTimetableService) Generate(context.Context, int64, dto.GenerateRequest) (*dto.GenerateResponse, error) {
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return s.generate, nil
}

func (s *stubTimetableService) Lessons(context.Context, int64) ([]models.Lesson, error) {
	return s.lessons, s.err
}

func (s *stubTimetableService) LessonsByClass(context.Context, int64, int64) ([]models.Lesson, error) {
	return s.lessons, s.err
}

func (s *stubTimetableService) LessonsByTeacher(context.Context, int64, int64) ([]models.Lesson, error) {
	return s.lessons, s.err
}

func newTestRouter(svc timetableService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &TimetableHandler{service: svc}
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestGenerateEndpointKeepsWireContract(t *testing.T) {
	svc := &stubTimetableService{
		generate: &dto.GenerateResponse{
			Success:          true,
			AllocatedLessons: 28,
			TotalLessons:     30,
			QualityScore:     87.5,
			ElapsedSeconds:   12.3,
			Pendencies: []models.Pendency{
				{ClassID: 1, SubjectID: 2, TeacherID: 3, Reason: models.PendencyNoFeasibleSlot},
			},
		},
	}
	router := newTestRouter(svc)

	body := `{"limitar_janelas":true,"respeitar_deslocamento":true,"distribuir_uniformemente":false,"tempo_maximo_geracao":120}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/horarios/1/gerar", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["success"])
	assert.EqualValues(t, 28, payload["aulas_alocadas"])
	assert.EqualValues(t, 30, payload["total_aulas"])
	assert.EqualValues(t, 87.5, payload["qualidade_score"])
	assert.EqualValues(t, 12.3, payload["tempo_geracao"])
	pendencias, ok := payload["pendencias"].([]interface{})
	require.True(t, ok)
	assert.Len(t, pendencias, 1)
	_, hasMessage := payload["message"]
	assert.False(t, hasMessage)
}

func TestGenerateEndpointFailureShape(t *testing.T) {
	svc := &stubTimetableService{generateErr: appErrors.ErrRunInProgress}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/horarios/1/gerar", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)

	var payload dto.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	assert.NotEmpty(t, payload.Message)
}

func TestGetTimetableNotFound(t *testing.T) {
	svc := &stubTimetableService{err: appErrors.ErrNotFound}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/horarios/7", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestPathIDValidation(t *testing.T) {
	svc := &stubTimetableService{timetable: &models.Timetable{ID: 1}}
	router := newTestRouter(svc)

	for _, path := range []string{
		"/api/v1/horarios/abc",
		"/api/v1/horarios/0",
		"/api/v1/horarios/1/turma/x",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestLessonViewPathsMatchLegacyAPI(t *testing.T) {
	svc := &stubTimetableService{
		timetable: &models.Timetable{ID: 1},
		lessons:   []models.Lesson{{ID: 1, TimetableID: 1, ClassID: 2, TeacherID: 3, Day: 1, Period: 1}},
	}
	router := newTestRouter(svc)

	// the legacy API hangs the per-class and per-teacher views directly
	// off the timetable id
	for _, path := range []string{
		"/api/v1/horarios/1/aulas",
		"/api/v1/horarios/1/turma/2",
		"/api/v1/horarios/1/professor/3",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, path)

		var envelope struct {
			Data []models.Lesson `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), path)
		assert.Len(t, envelope.Data, 1, path)
	}
}

func TestCreateTimetableRejectsBadJSON(t *testing.T) {
	svc := &stubTimetableService{}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/horarios", strings.NewReader(`{"nome":`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTimetableNoContent(t *testing.T) {
	svc := &stubTimetableService{}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/horarios/3", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
