package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Adaptive Exam Timetabling API",
        "description": "Timetable grid, conflict detection and solver job tracking",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Jobs", "description": "Solver job submission and tracking"},
        {"name": "Timetable", "description": "Grid layout, conflicts and grouped views"}
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
        "/api/v1/jobs": {
            "post": {
                "tags": ["Jobs"],
                "summary": "Submit a scheduling job and start tracking it",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/jobs/active": {
            "get": {
                "tags": ["Jobs"],
                "summary": "Get the tracked job's current state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active job"}
                }
            }
        },
        "/api/v1/jobs/active/cancel": {
            "post": {
                "tags": ["Jobs"],
                "summary": "Request cancellation of the tracked job",
                "responses": {
                    "202": {"description": "Accepted"},
                    "409": {"description": "Job already terminal"}
                }
            }
        },
        "/api/v1/timetable/grid": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Render the primary timetable grid for the filtered view",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No completed schedule loaded"}
                }
            }
        },
        "/api/v1/timetable/conflicts": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List conflicts for the whole schedule",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetable/views/rooms": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Group assignments by building and room",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetable/views/faculty": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Group assignments by faculty, department and invigilator",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetable/heatmap": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Aggregate assignment density by day of week and time bucket",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Download the current timetable grid as CSV or PDF",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
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
