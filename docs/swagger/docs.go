// Package swagger provides API documentation
package swagger

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
        "/chat": {
            "post": {
                "description": "Relays the upstream completion as Server-Sent Events. Every fragment is a data: {\"content\":\"...\"} frame, the stream ends with data: [DONE]. A failure after streaming began is reported as one data: {\"error\":\"...\"} frame.",
                "consumes": ["application/json"],
                "produces": ["text/event-stream"],
                "tags": ["chat"],
                "summary": "Stream a chat completion",
                "parameters": [
                    {
                        "description": "Conversation history and model",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/requests.ChatRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "SSE frames", "schema": {"type": "string"}},
                    "400": {"description": "Missing required fields", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "500": {"description": "Upstream failed before streaming began", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/document": {
            "post": {
                "description": "Runs OCR on a base64 PDF, then answers the prompt against the extracted text. answer is null when the prompt is empty or whitespace.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["document"],
                "summary": "Extract and question a document",
                "parameters": [
                    {
                        "description": "Document and optional question",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/requests.DocumentRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.DocumentResponse"}},
                    "400": {"description": "Missing required field: document", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "500": {"description": "Upstream failure or no extracted text", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/models": {
            "get": {
                "description": "Returns the static model catalog with capability flags.",
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.ModelListResponse"}}
                }
            }
        },
        "/vision": {
            "post": {
                "description": "Sends one base64 image and an optional prompt to a vision model.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["vision"],
                "summary": "Describe an image",
                "parameters": [
                    {
                        "description": "Image and prompt",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/requests.VisionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.ContentResponse"}},
                    "400": {"description": "Missing required field: image", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "500": {"description": "Upstream failure or empty answer", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.Info": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "supportsDocuments": {"type": "boolean"},
                "supportsVision": {"type": "boolean"}
            }
        },
        "requests.ChatMessage": {
            "type": "object",
            "properties": {
                "content": {"type": "string", "example": "Hi"},
                "role": {"type": "string", "example": "user"}
            }
        },
        "requests.ChatRequest": {
            "type": "object",
            "properties": {
                "messages": {"type": "array", "items": {"$ref": "#/definitions/requests.ChatMessage"}},
                "model": {"type": "string", "example": "mistral-small-latest"}
            }
        },
        "requests.DocumentRequest": {
            "type": "object",
            "properties": {
                "document": {"type": "string"},
                "model": {"type": "string", "example": "mistral-large-latest"},
                "prompt": {"type": "string", "example": "Summarize this document"}
            }
        },
        "requests.VisionRequest": {
            "type": "object",
            "properties": {
                "image": {"type": "string"},
                "model": {"type": "string", "example": "pixtral-large-latest"},
                "prompt": {"type": "string", "example": "What is in this picture?"}
            }
        },
        "responses.ContentResponse": {
            "type": "object",
            "properties": {
                "content": {"type": "string", "example": "A cat sitting on a windowsill."}
            }
        },
        "responses.DocumentResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "extractedText": {"type": "string"}
            }
        },
        "responses.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "error": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "responses.ModelListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Info"}},
                "object": {"type": "string", "example": "list"}
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
	Title:            "MistralHub Relay API",
	Description:      "Streams Mistral chat completions as Server-Sent Events and wraps the vision and document endpoints.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
