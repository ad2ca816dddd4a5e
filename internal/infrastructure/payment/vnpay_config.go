package payment

import (
	"errors"
	"time"
)

const (
	vnpayProductionURL = "https://pay.vnpay.vn/vpcpay.html"
	vnpaySandboxURL    = "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
	vnpayVersion       = "2.1.0"
	vnpayCommandPay    = "pay"
	vnpayCurrency      = "VND"
	vnpayTimeLayout    = "20060102150405"
)

// vnpayLocation is the fixed GMT+7 zone VNPay timestamps are expressed in
var vnpayLocation = time.FixedZone("ICT", 7*60*60)

// VNPayConfig contains configuration for the VNPay payment gateway
type VNPayConfig struct {
	// TmnCode is the merchant terminal code
	TmnCode string
	// HashSecret is the HMAC-SHA512 shared secret
	HashSecret string
	// PaymentURL overrides the hosted payment page
	PaymentURL string
	// IsSandbox selects the sandbox page when PaymentURL is empty
	IsSandbox bool
	// ReturnURL is where VNPay sends the payer's browser afterwards
	ReturnURL string
	// Locale is "vn" or "en"
	Locale string
	// OrderType is the VNPay merchandise category
	OrderType string
	// ExpireAfter is how long the payment link stays valid
	ExpireAfter time.Duration
}

// Errors for configuration validation
var (
	ErrVNPayMissingTmnCode    = errors.New("vnpay: missing terminal code")
	ErrVNPayMissingHashSecret = errors.New("vnpay: missing hash secret")
	ErrVNPayMissingReturnURL  = errors.New("vnpay: missing return URL")
)

// Validate validates the configuration and fills defaults
func (c *VNPayConfig) Validate() error {
	if c.TmnCode == "" {
		return ErrVNPayMissingTmnCode
	}
	if c.HashSecret == "" {
		return ErrVNPayMissingHashSecret
	}
	if c.ReturnURL == "" {
		return ErrVNPayMissingReturnURL
	}
	if c.Locale == "" {
		c.Locale = "vn"
	}
	if c.OrderType == "" {
		c.OrderType = "other"
	}
	if c.ExpireAfter <= 0 {
		c.ExpireAfter = 15 * time.Minute
	}
	return nil
}

// PayURL returns the hosted payment page URL
func (c *VNPayConfig) PayURL() string {
	if c.PaymentURL != "" {
		return c.PaymentURL
	}
	if c.IsSandbox {
		return vnpaySandboxURL
	}
	return vnpayProductionURL
}

// VNPayConfigBuilder helps build VNPayConfig
type VNPayConfigBuilder struct {
	config VNPayConfig
}

// NewVNPayConfigBuilder creates a new config builder
func NewVNPayConfigBuilder() *VNPayConfigBuilder {
	return &VNPayConfigBuilder{
		config: VNPayConfig{
			Locale:      "vn",
			OrderType:   "other",
			ExpireAfter: 15 * time.Minute,
		},
	}
}

// SetCredentials sets the terminal code and hash secret
func (b *VNPayConfigBuilder) SetCredentials(tmnCode, hashSecret string) *VNPayConfigBuilder {
	b.config.TmnCode = tmnCode
	b.config.HashSecret = hashSecret
	return b
}

// SetSandbox sets whether to use the sandbox page
func (b *VNPayConfigBuilder) SetSandbox(sandbox bool) *VNPayConfigBuilder {
	b.config.IsSandbox = sandbox
	return b
}

// SetPaymentURL overrides the hosted payment page
func (b *VNPayConfigBuilder) SetPaymentURL(paymentURL string) *VNPayConfigBuilder {
	b.config.PaymentURL = paymentURL
	return b
}

// SetReturnURL sets the browser return URL
func (b *VNPayConfigBuilder) SetReturnURL(returnURL string) *VNPayConfigBuilder {
	b.config.ReturnURL = returnURL
	return b
}

// SetLocale sets the payment page language
func (b *VNPayConfigBuilder) SetLocale(locale string) *VNPayConfigBuilder {
	b.config.Locale = locale
	return b
}

// SetExpireAfter sets the payment link lifetime
func (b *VNPayConfigBuilder) SetExpireAfter(d time.Duration) *VNPayConfigBuilder {
	b.config.ExpireAfter = d
	return b
}

// Build validates and returns the configuration
func (b *VNPayConfigBuilder) Build() (*VNPayConfig, error) {
	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
