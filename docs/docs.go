// Package docs is generated by swaggo/swag from the handler annotations.
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
        "/health": {
            "get": {"tags": ["health"], "summary": "Readiness probe", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/healthz": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/documents": {
            "get": {
                "tags": ["documents"], "summary": "List documents", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "default": 10, "description": "page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "post": {
                "tags": ["documents"], "summary": "Upload a PDF", "consumes": ["multipart/form-data"], "produces": ["application/json"],
                "parameters": [
                    {"type": "file", "description": "PDF file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "display title", "name": "title", "in": "formData"}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/documents/{id}": {
            "get": {
                "tags": ["documents"], "summary": "Get a document", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["documents"], "summary": "Delete a document",
                "parameters": [{"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/sessions": {
            "post": {
                "tags": ["sessions"], "summary": "Open a viewer session", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "document to open", "name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"document_id": {"type": "string"}}}}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}}
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["sessions"], "summary": "Session state", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "session id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "tags": ["sessions"], "summary": "Close a session",
                "parameters": [{"type": "string", "description": "session id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/sessions/{id}/page": {
            "post": {
                "tags": ["sessions"], "summary": "Go to page", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {"description": "target page", "name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"page": {"type": "integer"}}}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sessions/{id}/fullscreen": {
            "put": {
                "tags": ["sessions"], "summary": "Report host fullscreen state", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {"description": "host state", "name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"active": {"type": "boolean"}}}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sessions/{id}/keys": {
            "post": {
                "tags": ["sessions"], "summary": "Dispatch an input event", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {"description": "input event", "name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"type": {"type": "string"}, "key": {"type": "string"}, "ctrl": {"type": "boolean"}, "meta": {"type": "boolean"}, "shift": {"type": "boolean"}}}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sessions/{id}/notices/{notice}": {
            "delete": {
                "tags": ["sessions"], "summary": "Dismiss a notice",
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "notice id", "name": "notice", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/sessions/{id}/thumbnails/{page}": {
            "get": {
                "tags": ["sessions"], "summary": "Page thumbnail", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "session id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "page number", "name": "page", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/handles/{id}": {
            "get": {
                "tags": ["handles"], "summary": "Page image", "produces": ["image/png"],
                "parameters": [{"type": "string", "description": "handle id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PDF Viewer API",
	Description:      "Document catalogue and server-side viewer sessions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
