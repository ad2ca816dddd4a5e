package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Catalog   CatalogConfig
	Payment   PaymentConfig
	Invoice   InvoiceConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file path, ":memory:" allowed
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host                  string
	Port                  int
	Password              string
	DB                    int
	AllowInMemoryFallback bool
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// CatalogConfig selects where events and catalog services are read from
type CatalogConfig struct {
	Source             string // sql, mongo
	MongoURI           string
	MongoDatabase      string
	EventsCollection   string
	ServicesCollection string
	MongoTimeout       time.Duration
}

// MoMoSettings holds MoMo merchant credentials and endpoints
type MoMoSettings struct {
	Enabled     bool
	PartnerCode string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	RedirectURL string
	IPNURL      string
	RequestType string
	Lang        string
	Timeout     time.Duration
}

// VNPaySettings holds VNPay terminal credentials and endpoints
type VNPaySettings struct {
	Enabled     bool
	TmnCode     string
	HashSecret  string
	PaymentURL  string
	Sandbox     bool
	ReturnURL   string
	Locale      string
	ExpireAfter time.Duration
}

// PaymentConfig holds payment gateway and reconciliation settings
type PaymentConfig struct {
	DefaultGateway    string
	TransactionPrefix string
	NodeID            int64
	CallbackLockTTL   time.Duration
	CallbackLockWait  time.Duration
	ReturnURLHosts    []string // hosts a client may name as return_url; empty refuses overrides
	MoMo              MoMoSettings
	VNPay             VNPaySettings
}

// InvoiceConfig holds invoice creation settings
type InvoiceConfig struct {
	LockTTL  time.Duration
	LockWait time.Duration
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool     // Whether to enable Swagger endpoint
	RequireAuth bool     // Require authentication to access Swagger
	AllowedIPs  []string // IP whitelist (empty = allow all)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	LogsEnabled       bool
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
}

// Load loads configuration from a .env file, a TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with EVH_ prefix (e.g., EVH_PAYMENT_MOMO_SECRET_KEY)
// 2. .env in the working directory (never overrides variables already set)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("EVH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans whose default is true need an explicit default so that an
	// unset key does not read as false.
	v.SetDefault("redis.allow_in_memory_fallback", true)
	v.SetDefault("payment.momo.enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:                  v.GetString("redis.host"),
			Port:                  v.GetInt("redis.port"),
			Password:              v.GetString("redis.password"),
			DB:                    v.GetInt("redis.db"),
			AllowInMemoryFallback: v.GetBool("redis.allow_in_memory_fallback"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Catalog: CatalogConfig{
			Source:             v.GetString("catalog.source"),
			MongoURI:           v.GetString("catalog.mongo_uri"),
			MongoDatabase:      v.GetString("catalog.mongo_database"),
			EventsCollection:   v.GetString("catalog.events_collection"),
			ServicesCollection: v.GetString("catalog.services_collection"),
			MongoTimeout:       v.GetDuration("catalog.mongo_timeout"),
		},
		Payment: PaymentConfig{
			DefaultGateway:    v.GetString("payment.default_gateway"),
			TransactionPrefix: v.GetString("payment.transaction_prefix"),
			NodeID:            v.GetInt64("payment.node_id"),
			CallbackLockTTL:   v.GetDuration("payment.callback_lock_ttl"),
			CallbackLockWait:  v.GetDuration("payment.callback_lock_wait"),
			ReturnURLHosts:    v.GetStringSlice("payment.return_url_hosts"),
			MoMo: MoMoSettings{
				Enabled:     v.GetBool("payment.momo.enabled"),
				PartnerCode: v.GetString("payment.momo.partner_code"),
				AccessKey:   v.GetString("payment.momo.access_key"),
				SecretKey:   v.GetString("payment.momo.secret_key"),
				Endpoint:    v.GetString("payment.momo.endpoint"),
				RedirectURL: v.GetString("payment.momo.redirect_url"),
				IPNURL:      v.GetString("payment.momo.ipn_url"),
				RequestType: v.GetString("payment.momo.request_type"),
				Lang:        v.GetString("payment.momo.lang"),
				Timeout:     v.GetDuration("payment.momo.timeout"),
			},
			VNPay: VNPaySettings{
				Enabled:     v.GetBool("payment.vnpay.enabled"),
				TmnCode:     v.GetString("payment.vnpay.tmn_code"),
				HashSecret:  v.GetString("payment.vnpay.hash_secret"),
				PaymentURL:  v.GetString("payment.vnpay.payment_url"),
				Sandbox:     v.GetBool("payment.vnpay.sandbox"),
				ReturnURL:   v.GetString("payment.vnpay.return_url"),
				Locale:      v.GetString("payment.vnpay.locale"),
				ExpireAfter: v.GetDuration("payment.vnpay.expire_after"),
			},
		},
		Invoice: InvoiceConfig{
			LockTTL:  v.GetDuration("invoice.lock_ttl"),
			LockWait: v.GetDuration("invoice.lock_wait"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "eventhub-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "eventhub"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "eventhub.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "eventhub-backend"
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	// An empty origin list means no cross-origin requests are allowed until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = CatalogSourceSQL
	}
	if cfg.Catalog.MongoURI == "" {
		cfg.Catalog.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.Catalog.MongoDatabase == "" {
		cfg.Catalog.MongoDatabase = "eventhub"
	}
	if cfg.Catalog.EventsCollection == "" {
		cfg.Catalog.EventsCollection = "events"
	}
	if cfg.Catalog.ServicesCollection == "" {
		cfg.Catalog.ServicesCollection = "services"
	}
	if cfg.Catalog.MongoTimeout == 0 {
		cfg.Catalog.MongoTimeout = 10 * time.Second
	}
	if cfg.Payment.DefaultGateway == "" {
		cfg.Payment.DefaultGateway = "MOMO"
	}
	if cfg.Payment.TransactionPrefix == "" {
		cfg.Payment.TransactionPrefix = "EVH"
	}
	if cfg.Payment.CallbackLockTTL == 0 {
		cfg.Payment.CallbackLockTTL = 10 * time.Second
	}
	if cfg.Payment.CallbackLockWait == 0 {
		cfg.Payment.CallbackLockWait = 5 * time.Second
	}
	if cfg.Payment.MoMo.Timeout == 0 {
		cfg.Payment.MoMo.Timeout = 30 * time.Second
	}
	if cfg.Payment.MoMo.RequestType == "" {
		cfg.Payment.MoMo.RequestType = "payWithMethod"
	}
	if cfg.Payment.MoMo.Lang == "" {
		cfg.Payment.MoMo.Lang = "vi"
	}
	if cfg.Payment.VNPay.Locale == "" {
		cfg.Payment.VNPay.Locale = "vn"
	}
	if cfg.Payment.VNPay.ExpireAfter == 0 {
		cfg.Payment.VNPay.ExpireAfter = 15 * time.Minute
	}
	if cfg.Invoice.LockTTL == 0 {
		cfg.Invoice.LockTTL = 10 * time.Second
	}
	if cfg.Invoice.LockWait == 0 {
		cfg.Invoice.LockWait = 5 * time.Second
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "eventhub-backend"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported event catalog sources
const (
	CatalogSourceSQL   = "sql"
	CatalogSourceMongo = "mongo"
)

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Catalog.Source != CatalogSourceSQL && c.Catalog.Source != CatalogSourceMongo {
		return fmt.Errorf("catalog.source must be %q or %q, got %q", CatalogSourceSQL, CatalogSourceMongo, c.Catalog.Source)
	}
	if c.Payment.NodeID < 0 || c.Payment.NodeID > 1023 {
		return fmt.Errorf("payment.node_id must be between 0 and 1023, got %d", c.Payment.NodeID)
	}
	if !c.Payment.MoMo.Enabled && !c.Payment.VNPay.Enabled {
		return fmt.Errorf("at least one payment gateway must be enabled")
	}
	switch strings.ToUpper(c.Payment.DefaultGateway) {
	case "MOMO":
		if !c.Payment.MoMo.Enabled {
			return fmt.Errorf("payment.default_gateway is MOMO but payment.momo.enabled is false")
		}
	case "VNPAY":
		if !c.Payment.VNPay.Enabled {
			return fmt.Errorf("payment.default_gateway is VNPAY but payment.vnpay.enabled is false")
		}
	default:
		return fmt.Errorf("payment.default_gateway must be MOMO or VNPAY, got %q", c.Payment.DefaultGateway)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver != DriverPostgres {
			return fmt.Errorf("database.driver must be postgres in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Redis.AllowInMemoryFallback {
			return fmt.Errorf("redis.allow_in_memory_fallback must be false in production (locks must be shared)")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Payment.VNPay.Enabled && c.Payment.VNPay.Sandbox {
			return fmt.Errorf("payment.vnpay.sandbox must be false in production")
		}
		if c.Swagger.Enabled {
			if !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
				return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address of the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
