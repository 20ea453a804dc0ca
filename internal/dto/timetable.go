package dto

import "github.com/horariolabs/horario-api/internal/models"

// GenerateRequest triggers a generation run. Field names keep the legacy
// wire contract consumed by the existing frontend.
type GenerateRequest struct {
	LimitWindows     bool  `json:"limitar_janelas"`
	EnforceTravel    bool  `json:"respeitar_deslocamento"`
	DistributeEvenly bool  `json:"distribuir_uniformemente"`
	MaxSeconds       int   `json:"tempo_maximo_geracao" validate:"omitempty,min=1,max=280"`
	Seed             int64 `json:"seed" validate:"omitempty,min=0"`
}

// GenerateResponse reports the outcome of a generation run. Partial
// allocation is still Success=true; Message is present on failure only.
type GenerateResponse struct {
	Success          bool              `json:"success"`
	AllocatedLessons int               `json:"aulas_alocadas"`
	TotalLessons     int               `json:"total_aulas"`
	QualityScore     float64           `json:"qualidade_score"`
	ElapsedSeconds   float64           `json:"tempo_geracao"`
	Pendencies       []models.Pendency `json:"pendencias"`
	Message          string            `json:"message,omitempty"`
}

// CreateTimetableRequest registers a new timetable (generation run record).
type CreateTimetableRequest struct {
	Name     string `json:"nome" validate:"required,min=1,max=120"`
	Year     int    `json:"ano_letivo" validate:"required,min=2000,max=2100"`
	Semester int    `json:"semestre" validate:"omitempty,min=1,max=2"`
}

// UpdateTimetableRequest renames a timetable or moves it through its
// lifecycle (e.g. FINALIZED -> APPROVED).
type UpdateTimetableRequest struct {
	Name   *string `json:"nome" validate:"omitempty,min=1,max=120"`
	Status *string `json:"status" validate:"omitempty,oneof=DRAFT IN_PROGRESS FINALIZED APPROVED"`
}

// TimetableListQuery filters timetable listings.
type TimetableListQuery struct {
	Year     int `form:"ano_letivo"`
	Page     int `form:"page"`
	PageSize int `form:"limit"`
}
