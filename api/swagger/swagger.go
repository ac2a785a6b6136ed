package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Fleet Compliance API",
        "description": "Driver and vehicle credential lifecycle, onboarding, and compliance exports",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh, and password management"},
        {"name": "Credentials", "description": "Driver and vehicle credential checklists and submissions"},
        {"name": "Progress", "description": "Instruction-flow step tracking"},
        {"name": "Drivers", "description": "Driver profiles, availability, and vehicles"},
        {"name": "Onboarding", "description": "Onboarding checklist and activation gate"},
        {"name": "Review", "description": "Admin review queue and decisions"},
        {"name": "Credential Types", "description": "Requirement catalog management"},
        {"name": "Feature Flags", "description": "Per-company flag overrides"},
        {"name": "Reports", "description": "Compliance exports"}
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
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/driver/credentials": {
            "get": {
                "tags": ["Credentials"],
                "summary": "My credential checklist",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/driver/credentials/{typeId}": {
            "post": {
                "tags": ["Credentials"],
                "summary": "Submit a credential",
                "parameters": [
                    {"name": "typeId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already awaiting review"}
                }
            }
        },
        "/driver/credentials/{typeId}/progress": {
            "get": {
                "tags": ["Progress"],
                "summary": "Instruction-flow progress",
                "parameters": [
                    {"name": "typeId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Progress"],
                "summary": "Clear saved progress",
                "parameters": [
                    {"name": "typeId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/driver/credentials/{typeId}/progress/steps": {
            "put": {
                "tags": ["Progress"],
                "summary": "Save step data",
                "parameters": [
                    {"name": "typeId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/driver/credentials/{typeId}/progress/complete": {
            "post": {
                "tags": ["Progress"],
                "summary": "Complete a step",
                "parameters": [
                    {"name": "typeId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing required inputs"}
                }
            }
        },
        "/driver/profile": {
            "get": {
                "tags": ["Drivers"],
                "summary": "My profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Drivers"],
                "summary": "Update my profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/driver/availability": {
            "put": {
                "tags": ["Drivers"],
                "summary": "Replace availability windows",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/driver/payment-info": {
            "put": {
                "tags": ["Drivers"],
                "summary": "Store payout details",
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Driver payments disabled"}
                }
            }
        },
        "/driver/vehicles": {
            "get": {
                "tags": ["Drivers"],
                "summary": "My vehicles",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Drivers"],
                "summary": "Register a vehicle",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Contractor drivers only"}
                }
            }
        },
        "/driver/vehicles/{id}": {
            "patch": {
                "tags": ["Drivers"],
                "summary": "Update one of my vehicles",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/driver/onboarding": {
            "get": {
                "tags": ["Onboarding"],
                "summary": "My onboarding status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vehicles/{id}/credentials": {
            "get": {
                "tags": ["Credentials"],
                "summary": "Vehicle credential checklist",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/vehicles/{id}/credentials/{typeId}": {
            "post": {
                "tags": ["Credentials"],
                "summary": "Submit a vehicle credential",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "typeId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/review/queue": {
            "get": {
                "tags": ["Review"],
                "summary": "Pending-review queue",
                "parameters": [
                    {"name": "table", "in": "query", "type": "string"},
                    {"name": "type_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/review/{id}/approve": {
            "post": {
                "tags": ["Review"],
                "summary": "Approve a credential",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not pending review"}
                }
            }
        },
        "/admin/review/{id}/reject": {
            "post": {
                "tags": ["Review"],
                "summary": "Reject a credential",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not pending review"}
                }
            }
        },
        "/admin/review/{id}/verify": {
            "post": {
                "tags": ["Review"],
                "summary": "Verify on the driver's behalf",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/review/{id}/unverify": {
            "post": {
                "tags": ["Review"],
                "summary": "Remove an admin verification",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/review/{id}/history": {
            "get": {
                "tags": ["Review"],
                "summary": "Credential history trail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/drivers": {
            "get": {
                "tags": ["Drivers"],
                "summary": "List drivers",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "employment_type", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/drivers/{id}": {
            "get": {
                "tags": ["Drivers"],
                "summary": "Get a driver",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/drivers/{id}/onboarding": {
            "get": {
                "tags": ["Onboarding"],
                "summary": "A driver's onboarding status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/drivers/{id}/status": {
            "post": {
                "tags": ["Onboarding"],
                "summary": "Activate or deactivate a driver",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Activation blocked"}
                }
            }
        },
        "/admin/credential-types": {
            "get": {
                "tags": ["Credential Types"],
                "summary": "List credential types",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "scope", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Credential Types"],
                "summary": "Create a credential type",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/credential-types/{id}": {
            "get": {
                "tags": ["Credential Types"],
                "summary": "Get a credential type",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Credential Types"],
                "summary": "Update a credential type",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Archived types are immutable"}
                }
            },
            "delete": {
                "tags": ["Credential Types"],
                "summary": "Archive a credential type",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/credential-types/{id}/publish": {
            "post": {
                "tags": ["Credential Types"],
                "summary": "Publish a credential type",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already active"}
                }
            }
        },
        "/flags/effective": {
            "get": {
                "tags": ["Feature Flags"],
                "summary": "Effective flags for my company",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/flags": {
            "get": {
                "tags": ["Feature Flags"],
                "summary": "Flags with override state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/flags/{key}/default": {
            "put": {
                "tags": ["Feature Flags"],
                "summary": "Set a flag's platform default",
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown flag"}
                }
            }
        },
        "/admin/flags/{key}/override": {
            "put": {
                "tags": ["Feature Flags"],
                "summary": "Set a company override",
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Feature Flags"],
                "summary": "Clear a company override",
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/reports/compliance": {
            "post": {
                "tags": ["Reports"],
                "summary": "Generate a compliance report",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid format or window"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
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
