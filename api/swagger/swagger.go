package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TutorLink API",
        "description": "Tutoring marketplace backend: tutor search, ranking and profile management",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Search", "description": "Tutor search, statistics and filter metadata"},
        {"name": "Tutors", "description": "Tutor profile management"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/api/v1/search/tutors": {
            "get": {
                "tags": ["Search"],
                "summary": "Search tutors",
                "parameters": [
                    {"name": "subjects", "in": "query", "type": "string", "description": "Subject names, comma separated"},
                    {"name": "levels", "in": "query", "type": "string", "description": "Qualification levels, comma separated"},
                    {"name": "keywords", "in": "query", "type": "string", "description": "Free-text keywords"},
                    {"name": "availability", "in": "query", "type": "string", "description": "Availability slots, comma separated"},
                    {"name": "minRate", "in": "query", "type": "number"},
                    {"name": "maxRate", "in": "query", "type": "number"},
                    {"name": "sortBy", "in": "query", "type": "string", "enum": ["relevance", "experience", "hourlyRateMin", "hourlyRateMax", "rating"]},
                    {"name": "sortOrder", "in": "query", "type": "string", "enum": ["asc", "desc"]},
                    {"name": "page", "in": "query", "type": "integer", "minimum": 1},
                    {"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 50}
                ],
                "responses": {
                    "200": {"description": "Ranked tutor page", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/search/tutors/statistics": {
            "get": {
                "tags": ["Search"],
                "summary": "Aggregate statistics for a tutor search",
                "responses": {
                    "200": {"description": "Search statistics", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/search/tutors/export": {
            "get": {
                "tags": ["Search"],
                "summary": "Export the current search result page",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered file"}
                }
            }
        },
        "/api/v1/search/filters": {
            "get": {
                "tags": ["Search"],
                "summary": "Available search filter values",
                "responses": {
                    "200": {"description": "Filter options", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/tutors": {
            "post": {
                "tags": ["Tutors"],
                "summary": "Create tutor profile",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/tutors/{id}": {
            "get": {
                "tags": ["Tutors"],
                "summary": "Get tutor profile",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Tutor profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Tutors"],
                "summary": "Update tutor profile",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Tutors"],
                "summary": "Deactivate tutor profile",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deactivated"}
                }
            }
        },
        "/api/v1/tutors/{id}/subjects": {
            "put": {
                "tags": ["Tutors"],
                "summary": "Replace a tutor's subject list",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next_page": {"type": "boolean"},
                "has_previous_page": {"type": "boolean"}
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
