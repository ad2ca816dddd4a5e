package payment

// VNPay query parameter names
const (
	vnpParamVersion           = "vnp_Version"
	vnpParamCommand           = "vnp_Command"
	vnpParamTmnCode           = "vnp_TmnCode"
	vnpParamAmount            = "vnp_Amount"
	vnpParamCurrCode          = "vnp_CurrCode"
	vnpParamTxnRef            = "vnp_TxnRef"
	vnpParamOrderInfo         = "vnp_OrderInfo"
	vnpParamOrderType         = "vnp_OrderType"
	vnpParamLocale            = "vnp_Locale"
	vnpParamReturnURL         = "vnp_ReturnUrl"
	vnpParamIPAddr            = "vnp_IpAddr"
	vnpParamCreateDate        = "vnp_CreateDate"
	vnpParamExpireDate        = "vnp_ExpireDate"
	vnpParamSecureHash        = "vnp_SecureHash"
	vnpParamSecureHashType    = "vnp_SecureHashType"
	vnpParamResponseCode      = "vnp_ResponseCode"
	vnpParamTransactionStatus = "vnp_TransactionStatus"
	vnpParamTransactionNo     = "vnp_TransactionNo"
)

// vnpParamPrefix marks the parameters covered by the VNPay signature
const vnpParamPrefix = "vnp_"

// vnpSuccessCode is both the successful vnp_ResponseCode and vnp_TransactionStatus
const vnpSuccessCode = "00"

// VNPay wire amounts carry two implied decimal places
const vnpAmountMultiplier = 100

// vnpayIPNAck is the merchant's reply to a VNPay IPN
type vnpayIPNAck struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// VNPay IPN reply codes
const (
	vnpAckConfirmed        = "00"
	vnpAckOrderNotFound    = "01"
	vnpAckAlreadyConfirmed = "02"
	vnpAckInvalidAmount    = "04"
	vnpAckInvalidSignature = "97"
	vnpAckUnknownError     = "99"
)
