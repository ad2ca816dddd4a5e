package payment

import (
	"errors"
	"strings"
	"time"
)

const (
	momoProductionBaseURL = "https://payment.momo.vn"
	momoSandboxBaseURL    = "https://test-payment.momo.vn"
	momoCreatePath        = "/v2/gateway/api/create"
	momoDefaultType       = "payWithMethod"
	momoDefaultLang       = "vi"
)

// MoMoConfig contains configuration for the MoMo all-in-one payment API
type MoMoConfig struct {
	// PartnerCode is the merchant code issued by MoMo
	PartnerCode string
	// AccessKey identifies the merchant in signed payloads
	AccessKey string
	// SecretKey is the HMAC-SHA256 shared secret
	SecretKey string
	// BaseURL overrides the API host (used by tests and private deployments)
	BaseURL string
	// IsSandbox selects the MoMo test environment when BaseURL is empty
	IsSandbox bool
	// RedirectURL is where MoMo sends the payer's browser afterwards
	RedirectURL string
	// IPNURL is the server-to-server notification endpoint
	IPNURL string
	// RequestType is the MoMo payment method selector
	RequestType string
	// Lang is the language of MoMo pages
	Lang string
	// PartnerName and StoreID are shown on the MoMo payment page
	PartnerName string
	StoreID     string
	// Timeout bounds every outbound request
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrMoMoMissingPartnerCode = errors.New("momo: missing partner code")
	ErrMoMoMissingAccessKey   = errors.New("momo: missing access key")
	ErrMoMoMissingSecretKey   = errors.New("momo: missing secret key")
	ErrMoMoMissingIPNURL      = errors.New("momo: missing IPN URL")
	ErrMoMoMissingRedirectURL = errors.New("momo: missing redirect URL")
)

// Validate validates the configuration and fills defaults
func (c *MoMoConfig) Validate() error {
	if c.PartnerCode == "" {
		return ErrMoMoMissingPartnerCode
	}
	if c.AccessKey == "" {
		return ErrMoMoMissingAccessKey
	}
	if c.SecretKey == "" {
		return ErrMoMoMissingSecretKey
	}
	if c.IPNURL == "" {
		return ErrMoMoMissingIPNURL
	}
	if c.RedirectURL == "" {
		return ErrMoMoMissingRedirectURL
	}
	if c.RequestType == "" {
		c.RequestType = momoDefaultType
	}
	if c.Lang == "" {
		c.Lang = momoDefaultLang
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// CreateURL returns the payment creation endpoint
func (c *MoMoConfig) CreateURL() string {
	base := c.BaseURL
	if base == "" {
		base = momoProductionBaseURL
		if c.IsSandbox {
			base = momoSandboxBaseURL
		}
	}
	return strings.TrimRight(base, "/") + momoCreatePath
}

// MoMoConfigBuilder helps build MoMoConfig
type MoMoConfigBuilder struct {
	config MoMoConfig
}

// NewMoMoConfigBuilder creates a new config builder
func NewMoMoConfigBuilder() *MoMoConfigBuilder {
	return &MoMoConfigBuilder{
		config: MoMoConfig{
			RequestType: momoDefaultType,
			Lang:        momoDefaultLang,
		},
	}
}

// SetCredentials sets the partner code, access key and secret key
func (b *MoMoConfigBuilder) SetCredentials(partnerCode, accessKey, secretKey string) *MoMoConfigBuilder {
	b.config.PartnerCode = partnerCode
	b.config.AccessKey = accessKey
	b.config.SecretKey = secretKey
	return b
}

// SetSandbox sets whether to use the test environment
func (b *MoMoConfigBuilder) SetSandbox(sandbox bool) *MoMoConfigBuilder {
	b.config.IsSandbox = sandbox
	return b
}

// SetBaseURL overrides the API host
func (b *MoMoConfigBuilder) SetBaseURL(baseURL string) *MoMoConfigBuilder {
	b.config.BaseURL = baseURL
	return b
}

// SetRedirectURL sets the browser return URL
func (b *MoMoConfigBuilder) SetRedirectURL(redirectURL string) *MoMoConfigBuilder {
	b.config.RedirectURL = redirectURL
	return b
}

// SetIPNURL sets the notification URL
func (b *MoMoConfigBuilder) SetIPNURL(ipnURL string) *MoMoConfigBuilder {
	b.config.IPNURL = ipnURL
	return b
}

// SetRequestType sets the MoMo request type
func (b *MoMoConfigBuilder) SetRequestType(requestType string) *MoMoConfigBuilder {
	b.config.RequestType = requestType
	return b
}

// SetStore sets the partner name and store id shown to payers
func (b *MoMoConfigBuilder) SetStore(partnerName, storeID string) *MoMoConfigBuilder {
	b.config.PartnerName = partnerName
	b.config.StoreID = storeID
	return b
}

// SetTimeout sets the outbound request timeout
func (b *MoMoConfigBuilder) SetTimeout(timeout time.Duration) *MoMoConfigBuilder {
	b.config.Timeout = timeout
	return b
}

// Build validates and returns the configuration
func (b *MoMoConfigBuilder) Build() (*MoMoConfig, error) {
	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
