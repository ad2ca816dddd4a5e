// Package docs serves the OpenAPI document of the billing API.
// Regenerate with `swag init -g cmd/server/main.go --v3.1` after changing handler annotations.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "servers": [{"url": "{{.BasePath}}"}],
    "components": {
        "securitySchemes": {
            "BearerAuth": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
        },
        "schemas": {
            "ErrorInfo": {
                "type": "object",
                "properties": {
                    "code": {"type": "string", "example": "NOT_FOUND"},
                    "message": {"type": "string"},
                    "request_id": {"type": "string"},
                    "timestamp": {"type": "integer"}
                }
            },
            "ErrorResponse": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean", "example": false},
                    "error": {"$ref": "#/components/schemas/ErrorInfo"}
                }
            },
            "InvoiceLine": {
                "type": "object",
                "properties": {
                    "service_id": {"type": "string"},
                    "service_name": {"type": "string"},
                    "quantity": {"type": "integer", "minimum": 1},
                    "unit_price": {"type": "string", "example": "500000"},
                    "amount": {"type": "string", "example": "1000000"}
                }
            },
            "Invoice": {
                "type": "object",
                "properties": {
                    "id": {"type": "string", "format": "uuid"},
                    "event_id": {"type": "string"},
                    "lines": {"type": "array", "items": {"$ref": "#/components/schemas/InvoiceLine"}},
                    "total_amount": {"type": "string", "example": "1000000"},
                    "currency": {"type": "string", "example": "VND"},
                    "status": {"type": "string", "enum": ["Pending", "Paid", "Unpaid", "Canceled"]},
                    "created_at": {"type": "string", "format": "date-time"},
                    "updated_at": {"type": "string", "format": "date-time"},
                    "version": {"type": "integer"}
                }
            },
            "Payment": {
                "type": "object",
                "properties": {
                    "id": {"type": "string", "format": "uuid"},
                    "invoice_id": {"type": "string", "format": "uuid"},
                    "method": {"type": "string", "enum": ["MOMO", "VNPAY"]},
                    "amount": {"type": "string"},
                    "transaction_id": {"type": "string"},
                    "gateway_transaction_id": {"type": "string"},
                    "result_code": {"type": "string"},
                    "status": {"type": "string", "enum": ["Pending", "Completed", "Failed"]},
                    "completed_at": {"type": "string", "format": "date-time"}
                }
            },
            "InitiatePaymentRequest": {
                "type": "object",
                "properties": {
                    "gateway": {"type": "string", "enum": ["MOMO", "VNPAY"]},
                    "return_url": {"type": "string", "format": "uri"}
                }
            },
            "InitiatePaymentResponse": {
                "type": "object",
                "properties": {
                    "redirect_url": {"type": "string", "format": "uri"},
                    "payment_id": {"type": "string", "format": "uuid"},
                    "transaction_id": {"type": "string"},
                    "gateway": {"type": "string"},
                    "amount": {"type": "string"}
                }
            }
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/events/{eventId}/invoice": {
            "get": {
                "operationId": "getEventInvoice",
                "tags": ["invoices"],
                "summary": "Get or create the invoice of an event",
                "parameters": [{"name": "eventId", "in": "path", "required": true, "schema": {"type": "string"}}],
                "responses": {
                    "200": {"description": "Invoice", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Invoice"}}}},
                    "403": {"description": "Forbidden", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}},
                    "404": {"description": "Event not found", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}},
                    "422": {"description": "Catalog service missing", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
                }
            }
        },
        "/invoices": {
            "get": {
                "operationId": "listInvoices",
                "tags": ["invoices"],
                "summary": "List invoices (admin)",
                "parameters": [
                    {"name": "status", "in": "query", "schema": {"type": "string"}},
                    {"name": "event_id", "in": "query", "schema": {"type": "string"}},
                    {"name": "page", "in": "query", "schema": {"type": "integer", "default": 1}},
                    {"name": "page_size", "in": "query", "schema": {"type": "integer", "default": 20, "maximum": 100}}
                ],
                "responses": {"200": {"description": "Invoices"}, "403": {"description": "Forbidden"}}
            }
        },
        "/invoices/{id}": {
            "get": {
                "operationId": "getInvoice",
                "tags": ["invoices"],
                "summary": "Get invoice by ID",
                "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
                "responses": {"200": {"description": "Invoice"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "operationId": "deleteInvoice",
                "tags": ["invoices"],
                "summary": "Delete an invoice (admin)",
                "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
                "responses": {"204": {"description": "Deleted"}, "409": {"description": "Invoice has payments"}}
            }
        },
        "/invoices/{id}/status": {
            "put": {
                "operationId": "updateInvoiceStatus",
                "tags": ["invoices"],
                "summary": "Change an invoice status (admin)",
                "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
                "requestBody": {"content": {"application/json": {"schema": {"type": "object", "properties": {"status": {"type": "string"}}}}}},
                "responses": {"200": {"description": "Invoice"}, "409": {"description": "Already paid"}}
            }
        },
        "/invoices/{id}/payments": {
            "post": {
                "operationId": "initiatePayment",
                "tags": ["payments"],
                "summary": "Start a payment for an invoice",
                "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}],
                "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/InitiatePaymentRequest"}}}},
                "responses": {
                    "201": {"description": "Payment started", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/InitiatePaymentResponse"}}}},
                    "409": {"description": "Invoice already paid"},
                    "422": {"description": "Invoice amount is not payable"},
                    "502": {"description": "Gateway unavailable or rejected the request"}
                }
            }
        },
        "/payments/{transactionId}": {
            "get": {
                "operationId": "getPaymentStatus",
                "tags": ["payments"],
                "summary": "Get payment status by transaction ID",
                "parameters": [{"name": "transactionId", "in": "path", "required": true, "schema": {"type": "string"}}],
                "responses": {"200": {"description": "Payment", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Payment"}}}}}
            }
        },
        "/payments/callback/momo": {
            "post": {
                "operationId": "handleMoMoCallback",
                "tags": ["payment-callbacks"],
                "summary": "Handle MoMo IPN",
                "security": [],
                "responses": {"200": {"description": "Acknowledged"}, "400": {"description": "Rejected"}, "500": {"description": "Retry later"}}
            }
        },
        "/payments/callback/vnpay": {
            "get": {
                "operationId": "handleVNPayCallback",
                "tags": ["payment-callbacks"],
                "summary": "Handle VNPay IPN",
                "security": [],
                "responses": {"200": {"description": "Acknowledged"}, "400": {"description": "Rejected"}, "500": {"description": "Retry later"}}
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
	Title:            "EventHub Billing API",
	Description:      "Invoicing and payment reconciliation for event planning",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
