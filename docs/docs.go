// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/upload": {
            "post": {
                "description": "Relays the file to the document parsing vendor and stores the result as the session's current result.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["parse"],
                "summary": "Upload and parse a document",
                "parameters": [
                    {"type": "file", "description": "Document to parse", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "OCR mode: auto or force", "name": "ocr", "in": "formData"},
                    {"type": "boolean", "description": "Request base64 crops for tables, figures, charts and equations", "name": "extract_images", "in": "formData"},
                    {"type": "string", "description": "Comma-separated list of html, markdown, text", "name": "output_formats", "in": "formData"},
                    {"type": "string", "description": "Session identifier", "name": "X-Session-ID", "in": "header"}
                ],
                "responses": {
                    "201": {"description": "Document parsed", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Missing file, unsupported type or invalid option", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "409": {"description": "Upload already in progress", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "502": {"description": "Vendor rejected the request", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/result": {
            "get": {
                "produces": ["application/json"],
                "tags": ["result"],
                "summary": "Get the current parse result",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "No result for this session", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/result/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["result"],
                "summary": "Summarize the current parse result",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "No result for this session", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/result/document": {
            "get": {
                "produces": ["application/json"],
                "tags": ["result"],
                "summary": "Get the sanitized reading view",
                "parameters": [
                    {"type": "integer", "description": "1-based page; omit for every page", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Page out of range", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "No result for this session", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/result/elements": {
            "get": {
                "produces": ["application/json"],
                "tags": ["result"],
                "summary": "List the elements on a page",
                "parameters": [
                    {"type": "integer", "description": "1-based page; defaults to the first page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Index of the element to highlight", "name": "selected", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Page or selection out of range", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "No result for this session", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/result/elements/{index}": {
            "get": {
                "description": "Returns the element and the view of its page with only that element highlighted.",
                "produces": ["application/json"],
                "tags": ["result"],
                "summary": "Select one element",
                "parameters": [
                    {"type": "integer", "description": "Element index in vendor order", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Index out of range", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "No result for this session", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/result/pages/{page}/boxes.png": {
            "get": {
                "produces": ["image/png"],
                "tags": ["result"],
                "summary": "Render the bounding boxes of a page",
                "parameters": [
                    {"type": "integer", "description": "1-based page", "name": "page", "in": "path", "required": true},
                    {"type": "integer", "description": "Index of the element to highlight", "name": "selected", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Page or selection out of range", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "No result for this session", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/result/export": {
            "get": {
                "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["result"],
                "summary": "Export the elements as CSV or XLSX",
                "parameters": [
                    {"type": "string", "description": "csv (default) or xlsx", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "No result for this session", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Get the session's upload state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Discard the session's result",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "409": {"description": "Upload in progress", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "data": {}
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/handler.ErrorDetail"}
            }
        },
        "handler.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "RESULT_NOT_FOUND"},
                "message": {"type": "string", "example": "no parse result for this session; upload a document first"},
                "vendor_status": {"type": "integer", "example": 401}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "parseview API",
	Description:      "Document parse playground: relays uploads to the document parsing vendor and serves the session's result.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
