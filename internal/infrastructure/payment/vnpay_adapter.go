package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/shared"
)

// VNPayAdapter implements billing.PaymentGateway for VNPay.
// VNPay initiation is a signed redirect, so CreatePayment performs no network call.
type VNPayAdapter struct {
	config *VNPayConfig
	now    func() time.Time
}

// NewVNPayAdapter creates a new VNPay adapter
func NewVNPayAdapter(config *VNPayConfig) (*VNPayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &VNPayAdapter{
		config: config,
		now:    time.Now,
	}, nil
}

// GatewayType returns the gateway type
func (a *VNPayAdapter) GatewayType() billing.GatewayType {
	return billing.GatewayVNPay
}

// CreatePayment builds the signed VNPay payment URL
func (a *VNPayAdapter) CreatePayment(ctx context.Context, req *billing.CreatePaymentRequest) (*billing.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	returnURL := a.config.ReturnURL
	if req.ReturnURL != "" {
		returnURL = req.ReturnURL
	}
	clientIP := req.ClientIP
	if clientIP == "" {
		clientIP = "127.0.0.1"
	}

	now := a.now().In(vnpayLocation)
	params := map[string]string{
		vnpParamVersion:    vnpayVersion,
		vnpParamCommand:    vnpayCommandPay,
		vnpParamTmnCode:    a.config.TmnCode,
		vnpParamAmount:     req.Amount.Mul(decimal.NewFromInt(vnpAmountMultiplier)).StringFixed(0),
		vnpParamCurrCode:   vnpayCurrency,
		vnpParamTxnRef:     req.TransactionID,
		vnpParamOrderInfo:  req.OrderInfo,
		vnpParamOrderType:  a.config.OrderType,
		vnpParamLocale:     a.config.Locale,
		vnpParamReturnURL:  returnURL,
		vnpParamIPAddr:     clientIP,
		vnpParamCreateDate: now.Format(vnpayTimeLayout),
		vnpParamExpireDate: now.Add(a.config.ExpireAfter).Format(vnpayTimeLayout),
	}

	return &billing.CreatePaymentResponse{
		Gateway:     billing.GatewayVNPay,
		RedirectURL: a.buildPaymentURL(params),
	}, nil
}

// VerifyCallback verifies the secure hash of a VNPay IPN query string and extracts its fields
func (a *VNPayAdapter) VerifyCallback(ctx context.Context, payload []byte) (*billing.GatewayCallback, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(string(payload), "?"))
	if err != nil {
		return nil, shared.Wrap(billing.ErrInvalidCallback, fmt.Sprintf("vnpay: failed to parse notification: %v", err))
	}

	signature := values.Get(vnpParamSecureHash)
	if !signatureEqual(a.sign(values), signature) {
		return nil, billing.ErrInvalidSignature
	}
	if values.Get(vnpParamTmnCode) != a.config.TmnCode {
		return nil, shared.Wrap(billing.ErrInvalidSignature, "vnpay: notification for another terminal")
	}

	rawAmount, err := decimal.NewFromString(values.Get(vnpParamAmount))
	if err != nil {
		return nil, shared.Wrap(billing.ErrInvalidCallback, fmt.Sprintf("vnpay: invalid amount %q", values.Get(vnpParamAmount)))
	}
	// vnp_Amount is the amount in đồng times 100; anything else cannot match a payment
	multiplier := decimal.NewFromInt(vnpAmountMultiplier)
	if rawAmount.IsNegative() || !rawAmount.Mod(multiplier).IsZero() {
		return nil, shared.Wrap(billing.ErrInvalidCallback, fmt.Sprintf("vnpay: amount %s is not a whole number of dong", rawAmount))
	}

	responseCode := values.Get(vnpParamResponseCode)
	txStatus := values.Get(vnpParamTransactionStatus)

	return &billing.GatewayCallback{
		Gateway:              billing.GatewayVNPay,
		TransactionID:        values.Get(vnpParamTxnRef),
		GatewayTransactionID: values.Get(vnpParamTransactionNo),
		ResultCode:           responseCode,
		Success:              responseCode == vnpSuccessCode && (txStatus == "" || txStatus == vnpSuccessCode),
		Amount:               rawAmount.Div(multiplier),
		Message:              values.Get(vnpParamOrderInfo),
	}, nil
}

// GenerateCallbackResponse renders the IPN acknowledgement body
func (a *VNPayAdapter) GenerateCallbackResponse(_ *billing.GatewayCallback, outcome billing.CallbackOutcome, message string) []byte {
	ack := vnpayIPNAck{RspCode: vnpAckUnknownError, Message: "Unknown error"}
	switch outcome {
	case billing.CallbackOutcomeProcessed:
		ack = vnpayIPNAck{RspCode: vnpAckConfirmed, Message: "Confirm Success"}
	case billing.CallbackOutcomeAlreadyProcessed:
		ack = vnpayIPNAck{RspCode: vnpAckAlreadyConfirmed, Message: "Order already confirmed"}
	case billing.CallbackOutcomeNotFound:
		ack = vnpayIPNAck{RspCode: vnpAckOrderNotFound, Message: "Order not found"}
	case billing.CallbackOutcomeAmountMismatch:
		ack = vnpayIPNAck{RspCode: vnpAckInvalidAmount, Message: "Invalid amount"}
	case billing.CallbackOutcomeInvalidSignature:
		ack = vnpayIPNAck{RspCode: vnpAckInvalidSignature, Message: "Invalid signature"}
	}
	if message != "" && outcome == billing.CallbackOutcomeError {
		ack.Message = message
	}

	data, _ := json.Marshal(ack)
	return data
}

// CallbackContentType returns the IPN acknowledgement content type
func (a *VNPayAdapter) CallbackContentType() string {
	return "application/json; charset=utf-8"
}

// sign computes the secure hash over every vnp_ parameter except the hash fields
func (a *VNPayAdapter) sign(values url.Values) string {
	params := make(map[string]string, len(values))
	for key := range values {
		if strings.HasPrefix(key, vnpParamPrefix) {
			params[key] = values.Get(key)
		}
	}
	return hmacSHA512Hex(a.config.HashSecret, sortedQuery(params, vnpParamSecureHash, vnpParamSecureHashType))
}

// buildPaymentURL appends the signed, sorted query to the payment page URL
func (a *VNPayAdapter) buildPaymentURL(params map[string]string) string {
	query := sortedQuery(params)
	hash := hmacSHA512Hex(a.config.HashSecret, query)
	return a.config.PayURL() + "?" + query + "&" + vnpParamSecureHash + "=" + hash
}

// Ensure VNPayAdapter implements PaymentGateway
var _ billing.PaymentGateway = (*VNPayAdapter)(nil)
