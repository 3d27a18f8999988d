// Package docs holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

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
        "/support-tickets/{ticketId}/refund-sessions": {
            "post": {
                "operationId": "openRefundSession",
                "summary": "Open a refund session",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "ticketId",
                        "type": "integer",
                        "required": true,
                        "description": "Support ticket ID"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "401": {
                        "description": "401",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "422": {
                        "description": "422",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "502": {
                        "description": "502",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/support-tickets/{ticketId}/refund-submissions": {
            "get": {
                "operationId": "listRefundSubmissions",
                "summary": "Refund submissions of a ticket",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "ticketId",
                        "type": "integer",
                        "required": true,
                        "description": "Support ticket ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "400": {
                        "description": "400",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "401": {
                        "description": "401",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/refund-sessions/{sessionId}": {
            "get": {
                "operationId": "getRefundSession",
                "summary": "Get a refund session",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    },
                    {
                        "in": "query",
                        "name": "wait",
                        "type": "boolean",
                        "required": false,
                        "description": "Wait for identity numbers"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "504": {
                        "description": "504",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            },
            "delete": {
                "operationId": "closeRefundSession",
                "summary": "Close a refund session",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "401",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/refund-sessions/{sessionId}/amount": {
            "put": {
                "operationId": "setRefundAmount",
                "summary": "Override the refund amount",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    },
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.SetAmountRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "400": {
                        "description": "400",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            },
            "delete": {
                "operationId": "resetRefundAmount",
                "summary": "Return to the computed refund amount",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "401": {
                        "description": "401",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/refund-sessions/{sessionId}/payment": {
            "put": {
                "operationId": "updateRefundPayment",
                "summary": "Choose the bank account and payment mode",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    },
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdatePaymentRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "400": {
                        "description": "400",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "422": {
                        "description": "422",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/refund-sessions/{sessionId}/validate": {
            "post": {
                "operationId": "validateRefundSession",
                "summary": "Check the refund request without submitting",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "422": {
                        "description": "422",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/refund-sessions/{sessionId}/submit": {
            "post": {
                "operationId": "submitRefund",
                "summary": "Validate and submit the refund",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "409": {
                        "description": "409",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "422": {
                        "description": "422",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/refund-sessions/{sessionId}/lines/{orderDetailId}/toggle": {
            "post": {
                "operationId": "toggleRefundLine",
                "summary": "Select or deselect an order line",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    },
                    {
                        "in": "path",
                        "name": "orderDetailId",
                        "type": "integer",
                        "required": true,
                        "description": "Order line ID"
                    },
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ToggleLineRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "400": {
                        "description": "400",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "409": {
                        "description": "409",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/refund-sessions/{sessionId}/lines/{orderDetailId}/quantity": {
            "put": {
                "operationId": "setRefundLineQuantity",
                "summary": "Set the returned quantity of a line",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    },
                    {
                        "in": "path",
                        "name": "orderDetailId",
                        "type": "integer",
                        "required": true,
                        "description": "Order line ID"
                    },
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.SetQuantityRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "400": {
                        "description": "400",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "422": {
                        "description": "422",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/refund-sessions/{sessionId}/lines/{orderDetailId}/serials/{index}": {
            "put": {
                "operationId": "setRefundLineSerial",
                "summary": "Set one serial number of a line",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    },
                    {
                        "in": "path",
                        "name": "orderDetailId",
                        "type": "integer",
                        "required": true,
                        "description": "Order line ID"
                    },
                    {
                        "in": "path",
                        "name": "index",
                        "type": "integer",
                        "required": true,
                        "description": "Serial slot, zero based"
                    },
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.SetSerialRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "400": {
                        "description": "400",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "422": {
                        "description": "422",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/refund-sessions/{sessionId}/lines/{orderDetailId}/lot": {
            "put": {
                "operationId": "setRefundLineLot",
                "summary": "Set the lot number of a line",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    },
                    {
                        "in": "path",
                        "name": "orderDetailId",
                        "type": "integer",
                        "required": true,
                        "description": "Order line ID"
                    },
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.SetLotRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "400": {
                        "description": "400",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                },
                "consumes": [
                    "application/json"
                ]
            }
        },
        "/refund-sessions/{sessionId}/lines/{orderDetailId}/lots": {
            "get": {
                "operationId": "listRefundLineLots",
                "summary": "List lots exported against a line",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    },
                    {
                        "in": "path",
                        "name": "orderDetailId",
                        "type": "integer",
                        "required": true,
                        "description": "Order line ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "401": {
                        "description": "401",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/refund-sessions/{sessionId}/lines/{orderDetailId}/identity-numbers/refresh": {
            "post": {
                "operationId": "refreshRefundLineIdentityNumbers",
                "summary": "Refetch a line's lot and serial numbers",
                "tags": [
                    "refund-sessions"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "sessionId",
                        "type": "string",
                        "required": true,
                        "description": "Refund session ID"
                    },
                    {
                        "in": "path",
                        "name": "orderDetailId",
                        "type": "integer",
                        "required": true,
                        "description": "Order line ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "404",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "409": {
                        "description": "409",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.Response": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {},
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                }
            }
        },
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string",
                    "example": "ERR_REFUND_VALIDATION"
                },
                "message": {
                    "type": "string"
                },
                "request_id": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string",
                    "format": "date-time"
                },
                "details": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ValidationDetail"
                    }
                }
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "rule": {
                    "type": "string",
                    "example": "lot_required"
                },
                "message": {
                    "type": "string"
                },
                "order_detail_id": {
                    "type": "integer"
                }
            }
        },
        "dto.ToggleLineRequest": {
            "type": "object",
            "required": [
                "include"
            ],
            "properties": {
                "include": {
                    "type": "boolean",
                    "example": true
                }
            }
        },
        "dto.SetQuantityRequest": {
            "type": "object",
            "required": [
                "quantity"
            ],
            "properties": {
                "quantity": {
                    "type": "integer",
                    "minimum": 0,
                    "example": 2
                }
            }
        },
        "dto.SetSerialRequest": {
            "type": "object",
            "properties": {
                "serial_number": {
                    "type": "string",
                    "maxLength": 128,
                    "example": "SN-0001"
                }
            }
        },
        "dto.SetLotRequest": {
            "type": "object",
            "properties": {
                "lot_number": {
                    "type": "string",
                    "maxLength": 128,
                    "example": "LOT-2024-01"
                }
            }
        },
        "dto.SetAmountRequest": {
            "type": "object",
            "required": [
                "amount"
            ],
            "properties": {
                "amount": {
                    "type": "string",
                    "example": "150000"
                }
            }
        },
        "dto.UpdatePaymentRequest": {
            "type": "object",
            "properties": {
                "bank_account_id": {
                    "type": "integer",
                    "minimum": 0,
                    "example": 12
                },
                "manual_mode": {
                    "type": "boolean"
                },
                "gateway_payment_id": {
                    "type": "string",
                    "maxLength": 128
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Operator access token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Vendor Console Refund API",
	Description:      "Refund processing for marketplace vendor support tickets",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
