// Package docs registers the OpenAPI document served under /swagger. Keep it
// in step with the handler annotations when routes change.
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
        "/corrections": {
            "get": {
                "description": "List the most recent corrections for a source, newest first",
                "produces": ["application/json"],
                "tags": ["corrections"],
                "summary": "List recent corrections",
                "parameters": [
                    {"type": "string", "description": "Statement source (smood, uber, smartbox)", "name": "source", "in": "query", "required": true},
                    {"type": "integer", "description": "Maximum records to return (default 20, max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Corrections", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Missing source or invalid limit", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            },
            "post": {
                "description": "Store a human-approved ledger for a statement. Records are append-only and feed later prompts as examples.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["corrections"],
                "summary": "Submit a correction",
                "parameters": [
                    {"description": "Correction", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SubmitCorrectionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Correction stored", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid request or empty correct_output", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/statements/parse": {
            "post": {
                "description": "Convert a Smood, Uber Eats or Smartbox payout PDF into a Banana import ledger",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json", "text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["statements"],
                "summary": "Convert a payout statement",
                "parameters": [
                    {"type": "file", "description": "Payout statement (PDF)", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Statement source (smood, uber, smartbox); inferred from the file name when omitted", "name": "source", "in": "formData"},
                    {"type": "string", "description": "Response format: json (default), csv or xlsx", "name": "format", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Ledger generated", "schema": {"allOf": [{"$ref": "#/definitions/handler.Response"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/handler.ConversionResponse"}}}]}},
                    "400": {"description": "Missing file, empty document or unsupported type", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "422": {"description": "Generated ledger still invalid after correction", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "429": {"description": "All providers rate limited", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "502": {"description": "Generation provider failed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "504": {"description": "Generation timed out", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.ConversionResponse": {
            "type": "object",
            "properties": {
                "attempts": {"type": "integer", "example": 1},
                "csv": {"type": "string"},
                "fingerprint": {"type": "string"},
                "is_error_document": {"type": "boolean", "example": false},
                "model": {"type": "string", "example": "gpt-4o-mini"},
                "source": {"type": "string", "example": "uber"}
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.APIError"},
                "success": {"type": "boolean", "example": false}
            }
        },
        "handler.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "success": {"type": "boolean", "example": true}
            }
        },
        "handler.SubmitCorrectionRequest": {
            "type": "object",
            "required": ["correct_output", "source"],
            "properties": {
                "correct_output": {"type": "string"},
                "document_fingerprint": {"type": "string"},
                "invoice_id": {"type": "string", "example": "PDN-12345"},
                "model_output": {"type": "string"},
                "source": {"type": "string", "example": "smood"}
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
	Title:            "Banana Ledger API",
	Description:      "Converts platform payout statements into Banana Accounting import ledgers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
