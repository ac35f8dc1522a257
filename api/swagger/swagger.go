package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "VEA Student Dashboard API",
        "description": "Read-side gateway that reconciles portal records into a single student dashboard",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Dashboard", "description": "Reconciled student dashboard"},
        {"name": "Reports", "description": "Asynchronous CSV/PDF exports"}
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
        "/students/{studentId}/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Reconciled student dashboard",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "name", "in": "query", "type": "string", "description": "Fallback display name"},
                    {"name": "email", "in": "query", "type": "string", "description": "Fallback email"},
                    {"name": "class", "in": "query", "type": "string", "description": "Fallback class name"},
                    {"name": "admissionNo", "in": "query", "type": "string", "description": "Fallback admission number"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing student id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report export",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid type or format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{jobId}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "jobId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "StudentProfile": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "class": {"type": "string"},
                "admissionNumber": {"type": "string"}
            }
        },
        "SubjectRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "subject": {"type": "string"},
                "teacher": {"type": "string"},
                "score": {"type": "number"},
                "grade": {"type": "string"}
            }
        },
        "AttendanceSummary": {
            "type": "object",
            "properties": {
                "present": {"type": "integer"},
                "total": {"type": "integer"},
                "percentage": {"type": "integer"}
            }
        },
        "TimetableSlot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "day": {"type": "string"},
                "time": {"type": "string"},
                "subject": {"type": "string"},
                "teacher": {"type": "string"},
                "location": {"type": "string"}
            }
        },
        "Assignment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "subject": {"type": "string"},
                "class": {"type": "string"},
                "teacher": {"type": "string"},
                "status": {"type": "string", "enum": ["sent", "submitted", "graded"]},
                "score": {"type": "number"},
                "dueDate": {"type": "string"},
                "overdue": {"type": "boolean"}
            }
        },
        "AssignmentInsight": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "submitted": {"type": "integer"},
                "graded": {"type": "integer"},
                "pending": {"type": "integer"},
                "completionRate": {"type": "integer"},
                "averageScore": {"type": "number"}
            }
        },
        "LibraryLoan": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "borrowedOn": {"type": "string"},
                "dueDate": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "UpcomingEvent": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "date": {"type": "string"},
                "description": {"type": "string"},
                "source": {"type": "string", "enum": ["calendar", "assignment"]},
                "location": {"type": "string"},
                "category": {"type": "string"}
            }
        },
        "StudentDashboardResponse": {
            "type": "object",
            "properties": {
                "profile": {"$ref": "#/definitions/StudentProfile"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectRecord"}},
                "attendance": {"$ref": "#/definitions/AttendanceSummary"},
                "timetable": {"type": "array", "items": {"$ref": "#/definitions/TimetableSlot"}},
                "assignments": {"type": "array", "items": {"$ref": "#/definitions/Assignment"}},
                "insight": {"$ref": "#/definitions/AssignmentInsight"},
                "library": {"type": "array", "items": {"$ref": "#/definitions/LibraryLoan"}},
                "events": {"type": "array", "items": {"$ref": "#/definitions/UpcomingEvent"}},
                "degraded": {"type": "array", "items": {"type": "string"}},
                "generatedAt": {"type": "string"}
            }
        },
        "CreateReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["dashboard", "assignments", "events"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["type", "format"]
        },
        "ReportJobResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string", "enum": ["QUEUED", "PROCESSING", "FINISHED", "FAILED"]},
                "progress": {"type": "integer"}
            }
        },
        "ReportStatusResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string", "enum": ["QUEUED", "PROCESSING", "FINISHED", "FAILED"]},
                "progress": {"type": "integer"},
                "resultUrl": {"type": "string"},
                "error": {"type": "string"}
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
