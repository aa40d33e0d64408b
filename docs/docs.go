// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/questions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["questions"],
                "summary": "Latest published questions",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/questions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["questions"],
                "summary": "Question detail",
                "parameters": [{"type": "integer", "description": "Question ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "missing or not yet published"}}
            }
        },
        "/api/v1/questions/{id}/results": {
            "get": {
                "produces": ["application/json"],
                "tags": ["questions"],
                "summary": "Question results",
                "parameters": [{"type": "integer", "description": "Question ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "missing or not yet published"}}
            }
        },
        "/api/v1/questions/{id}/vote": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["questions"],
                "summary": "Vote for a choice",
                "parameters": [
                    {"type": "integer", "description": "Question ID", "name": "id", "in": "path", "required": true},
                    {"description": "Vote payload", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.voteRequest"}}
                ],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "no choice selected"}, "404": {"description": "missing or not yet published"}, "429": {"description": "rate limited"}}
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an account",
                "parameters": [{"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.authRequest"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "email taken"}}
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [{"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.authRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "invalid credentials"}}
            }
        },
        "/api/v1/admin/questions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Admin question listing",
                "parameters": [
                    {"type": "string", "description": "Search in question text", "name": "q", "in": "query"},
                    {"type": "string", "description": "any, today, past_7_days, this_month, this_year", "name": "pub_date", "in": "query"},
                    {"type": "integer", "description": "Page, starting at 1", "name": "page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "invalid filter"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Create question",
                "parameters": [{"description": "Question with optional choices", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.createQuestionRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "invalid body"}}
            }
        },
        "/api/v1/admin/questions/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["admin"],
                "summary": "Update question",
                "parameters": [{"type": "integer", "description": "Question ID", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "not found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Delete question",
                "parameters": [{"type": "integer", "description": "Question ID", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "not found"}}
            }
        },
        "/api/v1/admin/questions/{id}/choices": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Add a choice to a question",
                "parameters": [{"type": "integer", "description": "Question ID", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "not found"}}
            }
        },
        "/api/v1/admin/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List users",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/admin/users/{id}/role": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["admin"],
                "summary": "Update user role",
                "parameters": [{"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "invalid id or body"}}
            }
        }
    },
    "definitions": {
        "api.authRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "api.voteRequest": {
            "type": "object",
            "properties": {"choice_id": {"type": "integer"}}
        },
        "api.createQuestionRequest": {
            "type": "object",
            "properties": {
                "question_text": {"type": "string"},
                "pub_date": {"type": "string"},
                "choices": {"type": "array", "items": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Polls API",
	Description:      "Questions go live at their publication time; visitors vote and read results.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
