package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Horario API",
        "description": "School timetable generation service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetables", "description": "Timetable lifecycle and generation"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/horarios": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List timetables",
                "parameters": [
                    {"name": "ano_letivo", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Timetables"],
                "summary": "Create timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/horarios/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Timetables"],
                "summary": "Rename timetable or advance lifecycle",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Invalid lifecycle transition"}
                }
            },
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete timetable and its lessons",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/horarios/{id}/gerar": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Run timetable generation",
                "description": "Runs the generation engine under the requested wall-clock budget and atomically replaces the timetable's lessons. Partial allocation still answers 200 with pendencias.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/GenerateResponse"}},
                    "409": {"description": "Run already in progress or timetable approved"},
                    "422": {"description": "Inconsistent registration data"}
                }
            }
        },
        "/horarios/{id}/aulas": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List every lesson of a timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/horarios/{id}/turma/{turmaId}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List one class's weekly schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "turmaId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/horarios/{id}/professor/{professorId}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List one teacher's weekly schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "professorId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateTimetableRequest": {
            "type": "object",
            "required": ["nome", "ano_letivo"],
            "properties": {
                "nome": {"type": "string"},
                "ano_letivo": {"type": "integer"},
                "semestre": {"type": "integer"}
            }
        },
        "UpdateTimetableRequest": {
            "type": "object",
            "properties": {
                "nome": {"type": "string"},
                "status": {"type": "string", "enum": ["DRAFT", "IN_PROGRESS", "FINALIZED", "APPROVED"]}
            }
        },
        "GenerateRequest": {
            "type": "object",
            "properties": {
                "limitar_janelas": {"type": "boolean"},
                "respeitar_deslocamento": {"type": "boolean"},
                "distribuir_uniformemente": {"type": "boolean"},
                "tempo_maximo_geracao": {"type": "integer", "maximum": 280},
                "seed": {"type": "integer"}
            }
        },
        "GenerateResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "aulas_alocadas": {"type": "integer"},
                "total_aulas": {"type": "integer"},
                "qualidade_score": {"type": "number"},
                "tempo_geracao": {"type": "number"},
                "pendencias": {"type": "array", "items": {"$ref": "#/definitions/Pendency"}},
                "message": {"type": "string"}
            }
        },
        "Pendency": {
            "type": "object",
            "properties": {
                "class_id": {"type": "integer"},
                "subject_id": {"type": "integer"},
                "teacher_id": {"type": "integer"},
                "reason": {"type": "string", "enum": ["NO_FEASIBLE_SLOT", "TEACHER_OVERLOAD", "ROOM_UNAVAILABLE", "TIME_BUDGET_EXCEEDED"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
