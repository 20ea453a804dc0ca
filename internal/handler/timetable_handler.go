package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/horariolabs/horario-api/internal/dto"
	"github.com/horariolabs/horario-api/internal/models"
	"github.com/horariolabs/horario-api/internal/service"
	appErrors "github.com/horariolabs/horario-api/pkg/errors"
	"github.com/horariolabs/horario-api/pkg/response"
)

type timetableService interface {
	Create(ctx context.Context, req dto.CreateTimetableRequest) (*models.Timetable, error)
	Get(ctx context.Context, id int64) (*models.Timetable, error)
	List(ctx context.Context, q dto.TimetableListQuery) ([]models.Timetable, *models.Pagination, error)
	Update(ctx context.Context, id int64, req dto.UpdateTimetableRequest) (*models.Timetable, error)
	Delete(ctx context.Context, id int64) error
	Generate(ctx context.Context, id int64, req dto.GenerateRequest) (*dto.GenerateResponse, error)
	Lessons(ctx context.Context, id int64) ([]models.Lesson, error)
	LessonsByClass(ctx context.Context, id, classID int64) ([]models.Lesson, error)
	LessonsByTeacher(ctx context.Context, id, teacherID int64) ([]models.Lesson, error)
}

// TimetableHandler exposes the timetable endpoints. Routes keep the legacy
// Portuguese paths the existing frontend consumes.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// RegisterRoutes mounts the timetable routes on the router group.
func (h *TimetableHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/horarios", h.Create)
	rg.GET("/horarios", h.List)
	rg.GET("/horarios/:id", h.Get)
	rg.PUT("/horarios/:id", h.Update)
	rg.DELETE("/horarios/:id", h.Delete)
	rg.POST("/horarios/:id/gerar", h.Generate)
	rg.GET("/horarios/:id/aulas", h.Lessons)
	rg.GET("/horarios/:id/turma/:turmaId", h.LessonsByClass)
	rg.GET("/horarios/:id/professor/:professorId", h.LessonsByTeacher)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid identifier"))
		return 0, false
	}
	return id, true
}

// Create godoc
// @Summary Create a timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.CreateTimetableRequest true "Create timetable payload"
// @Success 201 {object} response.Envelope
// @Router /horarios [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	t, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, t)
}

// List godoc
// @Summary List timetables
// @Tags Timetables
// @Produce json
// @Param ano_letivo query int false "Filter by school year"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /horarios [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var q dto.TimetableListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid list query"))
		return
	}
	timetables, pagination, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetables, pagination)
}

// Get godoc
// @Summary Get a timetable
// @Tags Timetables
// @Produce json
// @Param id path int true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, t, nil)
}

// Update godoc
// @Summary Rename a timetable or advance its lifecycle
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path int true "Timetable ID"
// @Param payload body dto.UpdateTimetableRequest true "Update timetable payload"
// @Success 200 {object} response.Envelope
// @Router /horarios/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timetable payload"))
		return
	}
	t, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, t, nil)
}

// Delete godoc
// @Summary Delete a timetable and its lessons
// @Tags Timetables
// @Param id path int true "Timetable ID"
// @Success 204 "No Content"
// @Router /horarios/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Generate godoc
// @Summary Run timetable generation
// @Description Runs the constructive + repair engine under the requested wall-clock budget and atomically replaces the timetable's lessons. Partial allocation is a success; unplaced lessons come back as pendencias.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path int true "Timetable ID"
// @Param payload body dto.GenerateRequest true "Generation options"
// @Success 200 {object} dto.GenerateResponse
// @Failure 409 {object} dto.GenerateResponse
// @Failure 422 {object} dto.GenerateResponse
// @Router /horarios/{id}/gerar [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload")
		c.JSON(appErr.Status, dto.GenerateResponse{Success: false, Message: appErr.Message})
		return
	}
	res, err := h.service.Generate(c.Request.Context(), id, req)
	if err != nil {
		// the generation endpoint answers in its own shape, even on failure
		appErr := appErrors.FromError(err)
		c.JSON(appErr.Status, dto.GenerateResponse{Success: false, Message: appErr.Message})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Lessons godoc
// @Summary List every lesson of a timetable
// @Tags Timetables
// @Produce json
// @Param id path int true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/{id}/aulas [get]
func (h *TimetableHandler) Lessons(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lessons, err := h.service.Lessons(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// LessonsByClass godoc
// @Summary List one class's weekly schedule
// @Tags Timetables
// @Produce json
// @Param id path int true "Timetable ID"
// @Param turmaId path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/{id}/turma/{turmaId} [get]
func (h *TimetableHandler) LessonsByClass(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	classID, ok := pathID(c, "turmaId")
	if !ok {
		return
	}
	lessons, err := h.service.LessonsByClass(c.Request.Context(), id, classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// LessonsByTeacher godoc
// @Summary List one teacher's weekly schedule
// @Tags Timetables
// @Produce json
// @Param id path int true "Timetable ID"
// @Param professorId path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /horarios/{id}/professor/{professorId} [get]
func (h *TimetableHandler) LessonsByTeacher(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	teacherID, ok := pathID(c, "professorId")
	if !ok {
		return
	}
	lessons, err := h.service.LessonsByTeacher(c.Request.Context(), id, teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}
