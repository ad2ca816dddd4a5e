package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/eventhub/backend/internal/application/billing"
	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/interfaces/http/middleware"
)

// PaymentUseCase is the payment application service consumed by PaymentHandler
type PaymentUseCase interface {
	Initiate(ctx context.Context, invoiceID uuid.UUID, req billingapp.InitiatePaymentRequest, requester planning.Requester) (*billingapp.InitiatePaymentResponse, error)
	GetStatus(ctx context.Context, transactionID string, requester planning.Requester) (*billingapp.PaymentResponse, error)
}

// PaymentHandler handles payment initiation and status endpoints
type PaymentHandler struct {
	BaseHandler
	payments PaymentUseCase
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// InitiatePayment godoc
//
//	@ID				initiatePayment
//	@Summary		Start a payment for an invoice
//	@Description	Registers a payment attempt with the selected gateway and returns the URL to redirect the payer to
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Invoice ID"	format(uuid)
//	@Param			request	body		billingapp.InitiatePaymentRequest	false	"Gateway selection"
//	@Success		201		{object}	APIResponse[billingapp.InitiatePaymentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Invoice already paid"
//	@Failure		422		{object}	ErrorResponse	"Invoice amount is not payable"
//	@Failure		502		{object}	ErrorResponse	"Gateway unavailable or rejected the request"
//	@Security		BearerAuth
//	@Router			/invoices/{id}/payments [post]
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	invoiceID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req billingapp.InitiatePaymentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}
	req.ClientIP = c.ClientIP()

	resp, err := h.payments.Initiate(c.Request.Context(), invoiceID, req, requester(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetPaymentStatus godoc
//
//	@ID				getPaymentStatus
//	@Summary		Get payment status by transaction ID
//	@Tags			payments
//	@Produce		json
//	@Param			transactionId	path		string	true	"Merchant transaction ID"
//	@Success		200				{object}	APIResponse[billingapp.PaymentResponse]
//	@Failure		403				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/payments/{transactionId} [get]
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	payment, err := h.payments.GetStatus(c.Request.Context(), c.Param("transactionId"), requester(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}
