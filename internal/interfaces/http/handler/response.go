package handler

import "github.com/eventhub/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// MoMoCallbackAck is the acknowledgement body MoMo expects from an IPN endpoint
type MoMoCallbackAck struct {
	PartnerCode string `json:"partnerCode" example:"MOMOXXXX"`
	OrderID     string `json:"orderId" example:"EVH1780000000000000001"`
	RequestID   string `json:"requestId" example:"EVH1780000000000000001"`
	ResultCode  int    `json:"resultCode" example:"0"`
	Message     string `json:"message" example:"success"`
}

// VNPayCallbackAck is the acknowledgement body VNPay expects from an IPN endpoint
type VNPayCallbackAck struct {
	RspCode string `json:"RspCode" example:"00"`
	Message string `json:"Message" example:"Confirm Success"`
}
