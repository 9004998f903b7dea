// Package docs holds the OpenAPI description of the payment widget host.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness of the widget host",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.HealthResponse"}}
                }
            }
        },
        "/checkout/{sessionID}": {
            "get": {
                "produces": ["text/html"],
                "tags": ["checkout"],
                "summary": "Render the payment widget for a pending checkout",
                "parameters": [
                    {"type": "string", "description": "checkout session id", "name": "sessionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Err"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Err"}}
                }
            }
        },
        "/sdk/checkout.js": {
            "get": {
                "produces": ["application/javascript"],
                "tags": ["checkout"],
                "summary": "Serve the cached gateway checkout script",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.Err"}}
                }
            }
        },
        "/api/v1/checkout/{sessionID}/success": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["checkout"],
                "summary": "Report a successful payment from the widget",
                "parameters": [
                    {"type": "string", "description": "checkout session id", "name": "sessionID", "in": "path", "required": true},
                    {"description": "gateway credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.PaymentSuccessRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.ResolveResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Err"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Err"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Err"}}
                }
            }
        },
        "/api/v1/checkout/{sessionID}/failure": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["checkout"],
                "summary": "Report a failed or dismissed payment from the widget",
                "parameters": [
                    {"type": "string", "description": "checkout session id", "name": "sessionID", "in": "path", "required": true},
                    {"description": "failure reason", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.PaymentFailureRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.ResolveResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Err"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Err"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.Err"}}
                }
            }
        }
    },
    "definitions": {
        "request.PaymentSuccessRequest": {
            "type": "object",
            "properties": {
                "razorpay_payment_id": {"type": "string"},
                "razorpay_order_id": {"type": "string"},
                "razorpay_signature": {"type": "string"}
            }
        },
        "request.PaymentFailureRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"},
                "code": {"type": "string"},
                "dismissed": {"type": "boolean"}
            }
        },
        "response.ResolveResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "outcome": {"type": "string"}
            }
        },
        "response.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "response.Err": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "",
	Description:      "",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
