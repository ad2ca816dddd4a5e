package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeInvalidInput is used for input rejected by the domain
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the bearer token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeForbidden is used when the requester lacks permission
	ErrCodeForbidden = "FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeReferenceNotFound   = "REFERENCE_NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "INVALID_STATE"
)

// Invoice and payment error codes
const (
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeAlreadyPaid         = "ALREADY_PAID"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeInvoiceHasPayments  = "INVOICE_HAS_PAYMENTS"
	ErrCodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	ErrCodeGatewayRejected     = "GATEWAY_REJECTED"
	ErrCodeGatewayNotSupported = "GATEWAY_NOT_SUPPORTED"
	ErrCodeInvalidSignature    = "INVALID_SIGNATURE"
	ErrCodeInvalidCallback     = "INVALID_CALLBACK"
	ErrCodeAmountMismatch      = "AMOUNT_MISMATCH"
	ErrCodeLockTimeout         = "LOCK_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeReferenceNotFound:   http.StatusUnprocessableEntity,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusConflict,

	ErrCodeInvalidStatus:       http.StatusBadRequest,
	ErrCodeAlreadyPaid:         http.StatusConflict,
	ErrCodeInvalidAmount:       http.StatusUnprocessableEntity,
	ErrCodeInvoiceHasPayments:  http.StatusConflict,
	ErrCodeGatewayUnavailable:  http.StatusBadGateway,
	ErrCodeGatewayRejected:     http.StatusBadGateway,
	ErrCodeGatewayNotSupported: http.StatusBadRequest,
	ErrCodeInvalidSignature:    http.StatusBadRequest,
	ErrCodeInvalidCallback:     http.StatusBadRequest,
	ErrCodeAmountMismatch:      http.StatusConflict,
	ErrCodeLockTimeout:         http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
