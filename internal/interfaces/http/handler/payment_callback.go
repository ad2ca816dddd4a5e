package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/eventhub/backend/internal/application/billing"
	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/infrastructure/logger"
	"github.com/eventhub/backend/internal/interfaces/http/dto"
)

// CallbackProcessor verifies and applies raw gateway notifications
type CallbackProcessor interface {
	ProcessCallback(ctx context.Context, gatewayType billing.GatewayType, payload []byte) (*billingapp.CallbackResult, error)
}

// PaymentCallbackHandler handles payment gateway notification endpoints.
// These endpoints are called by the gateways themselves and authenticate by
// signature, not by bearer token.
type PaymentCallbackHandler struct {
	BaseHandler
	processor CallbackProcessor
}

// NewPaymentCallbackHandler creates a new PaymentCallbackHandler
func NewPaymentCallbackHandler(processor CallbackProcessor) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{processor: processor}
}

// HandleMoMoCallback godoc
//
//	@ID				handleMoMoCallback
//	@Summary		Handle MoMo IPN
//	@Description	Receive and reconcile a payment notification from MoMo
//	@Tags			payment-callbacks
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	MoMoCallbackAck
//	@Failure		400	{object}	MoMoCallbackAck	"Signature or payload rejected"
//	@Failure		500	{object}	MoMoCallbackAck
//	@Router			/payments/callback/momo [post]
func (h *PaymentCallbackHandler) HandleMoMoCallback(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidCallback, "Failed to read request body")
		return
	}
	h.process(c, billing.GatewayMoMo, payload)
}

// HandleVNPayCallback godoc
//
//	@ID				handleVNPayCallback
//	@Summary		Handle VNPay IPN
//	@Description	Receive and reconcile a payment notification from VNPay. Parameters arrive in the query string; a form encoded body is accepted as well.
//	@Tags			payment-callbacks
//	@Produce		json
//	@Success		200	{object}	VNPayCallbackAck
//	@Failure		400	{object}	VNPayCallbackAck	"Signature or payload rejected"
//	@Failure		500	{object}	VNPayCallbackAck
//	@Router			/payments/callback/vnpay [get]
//	@Router			/payments/callback/vnpay [post]
func (h *PaymentCallbackHandler) HandleVNPayCallback(c *gin.Context) {
	payload := []byte(c.Request.URL.RawQuery)
	if len(payload) == 0 && c.Request.Method == http.MethodPost {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidCallback, "Failed to read request body")
			return
		}
		payload = body
	}
	h.process(c, billing.GatewayVNPay, payload)
}

func (h *PaymentCallbackHandler) process(c *gin.Context, gatewayType billing.GatewayType, payload []byte) {
	result, err := h.processor.ProcessCallback(c.Request.Context(), gatewayType, payload)
	if result == nil {
		if err == nil {
			err = errors.New("callback produced no result")
		}
		h.HandleError(c, err)
		return
	}

	status := callbackHTTPStatus(result.Outcome)
	if status == http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("Payment callback failed",
			zap.String("gateway", gatewayType.String()),
			zap.Error(err))
	}
	c.Data(status, result.ContentType, result.GatewayResponse)
}

// callbackHTTPStatus answers 200 for every outcome the gateway should not
// retry, 400 for rejected deliveries and 500 so failures are redelivered
func callbackHTTPStatus(outcome billing.CallbackOutcome) int {
	switch outcome {
	case billing.CallbackOutcomeInvalidSignature, billing.CallbackOutcomeInvalidPayload:
		return http.StatusBadRequest
	case billing.CallbackOutcomeError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
