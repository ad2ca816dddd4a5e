package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/shared"
)

// MoMoAdapter implements billing.PaymentGateway for the MoMo e-wallet
type MoMoAdapter struct {
	config     *MoMoConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewMoMoAdapter creates a new MoMo adapter
func NewMoMoAdapter(config *MoMoConfig) (*MoMoAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &MoMoAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		now: time.Now,
	}, nil
}

// GatewayType returns the gateway type
func (a *MoMoAdapter) GatewayType() billing.GatewayType {
	return billing.GatewayMoMo
}

// CreatePayment signs and submits a payment order to MoMo.
// The transaction id doubles as MoMo's orderId and requestId.
func (a *MoMoAdapter) CreatePayment(ctx context.Context, req *billing.CreatePaymentRequest) (*billing.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	redirectURL := a.config.RedirectURL
	if req.ReturnURL != "" {
		redirectURL = req.ReturnURL
	}

	body := momoCreateRequest{
		PartnerCode: a.config.PartnerCode,
		PartnerName: a.config.PartnerName,
		StoreID:     a.config.StoreID,
		RequestID:   req.TransactionID,
		Amount:      req.Amount.IntPart(),
		OrderID:     req.TransactionID,
		OrderInfo:   req.OrderInfo,
		RedirectURL: redirectURL,
		IPNURL:      a.config.IPNURL,
		Lang:        a.config.Lang,
		RequestType: a.config.RequestType,
		AutoCapture: true,
		ExtraData:   req.ExtraData,
	}
	body.Signature = hmacSHA256Hex(a.config.SecretKey, a.buildCreateSignString(&body))

	respBody, err := a.doRequest(ctx, a.config.CreateURL(), body)
	if err != nil {
		return nil, err
	}

	var resp momoCreateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, shared.Wrap(billing.ErrGatewayRejected, fmt.Sprintf("momo: failed to parse response: %v", err))
	}
	if resp.ResultCode != momoResultSuccess || resp.PayURL == "" {
		return nil, shared.Wrap(billing.ErrGatewayRejected,
			fmt.Sprintf("momo: create payment rejected (resultCode=%d): %s", resp.ResultCode, resp.Message))
	}

	return &billing.CreatePaymentResponse{
		Gateway:     billing.GatewayMoMo,
		RedirectURL: resp.PayURL,
		RequestID:   resp.RequestID,
		RawResponse: string(respBody),
	}, nil
}

// VerifyCallback verifies the HMAC of a MoMo IPN body and extracts its fields
func (a *MoMoAdapter) VerifyCallback(ctx context.Context, payload []byte) (*billing.GatewayCallback, error) {
	var n momoNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, shared.Wrap(billing.ErrInvalidCallback, fmt.Sprintf("momo: failed to parse notification: %v", err))
	}

	expected := hmacSHA256Hex(a.config.SecretKey, a.buildNotificationSignString(&n))
	if !signatureEqual(expected, n.Signature) {
		return nil, billing.ErrInvalidSignature
	}
	if n.PartnerCode != a.config.PartnerCode {
		return nil, shared.Wrap(billing.ErrInvalidSignature, "momo: notification for another partner")
	}

	return &billing.GatewayCallback{
		Gateway:              billing.GatewayMoMo,
		TransactionID:        n.OrderID,
		GatewayTransactionID: strconv.FormatInt(n.TransID, 10),
		RequestID:            n.RequestID,
		ResultCode:           strconv.Itoa(n.ResultCode),
		Success:              n.ResultCode == momoResultSuccess,
		Amount:               decimal.NewFromInt(n.Amount),
		Message:              n.Message,
	}, nil
}

// GenerateCallbackResponse renders the IPN acknowledgement body
func (a *MoMoAdapter) GenerateCallbackResponse(callback *billing.GatewayCallback, outcome billing.CallbackOutcome, message string) []byte {
	ack := momoNotificationAck{
		PartnerCode:  a.config.PartnerCode,
		ResultCode:   momoResultFailed,
		Message:      message,
		ResponseTime: a.now().UnixMilli(),
	}
	if callback != nil {
		ack.OrderID = callback.TransactionID
		ack.RequestID = callback.RequestID
	}
	switch outcome {
	case billing.CallbackOutcomeProcessed, billing.CallbackOutcomeAlreadyProcessed:
		ack.ResultCode = momoResultSuccess
	}
	if ack.Message == "" {
		ack.Message = string(outcome)
	}

	data, _ := json.Marshal(ack)
	return data
}

// CallbackContentType returns the IPN acknowledgement content type
func (a *MoMoAdapter) CallbackContentType() string {
	return "application/json; charset=utf-8"
}

// buildCreateSignString builds the fixed-order raw signature of a create request
func (a *MoMoAdapter) buildCreateSignString(r *momoCreateRequest) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		a.config.AccessKey, r.Amount, r.ExtraData, r.IPNURL, r.OrderID, r.OrderInfo,
		r.PartnerCode, r.RedirectURL, r.RequestID, r.RequestType,
	)
}

// buildNotificationSignString builds the fixed-order raw signature of an IPN
func (a *MoMoAdapter) buildNotificationSignString(n *momoNotification) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		a.config.AccessKey, n.Amount, n.ExtraData, n.Message, n.OrderID, n.OrderInfo, n.OrderType,
		n.PartnerCode, n.PayType, n.RequestID, n.ResponseTime, n.ResultCode, n.TransID,
	)
}

// doRequest posts a JSON body to MoMo
func (a *MoMoAdapter) doRequest(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("momo: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("momo: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", billing.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: HTTP %d", billing.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		// MoMo reports validation problems as 4xx with the usual JSON body
		var rejected momoCreateResponse
		if json.Unmarshal(respBody, &rejected) == nil && rejected.Message != "" {
			return nil, shared.Wrap(billing.ErrGatewayRejected,
				fmt.Sprintf("momo: HTTP %d (resultCode=%d): %s", resp.StatusCode, rejected.ResultCode, rejected.Message))
		}
		return nil, shared.Wrap(billing.ErrGatewayRejected, fmt.Sprintf("momo: HTTP %d", resp.StatusCode))
	}

	return respBody, nil
}

// Ensure MoMoAdapter implements PaymentGateway
var _ billing.PaymentGateway = (*MoMoAdapter)(nil)
