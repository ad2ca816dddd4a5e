package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/infrastructure/auth"
	"github.com/eventhub/backend/internal/infrastructure/config"
	"github.com/eventhub/backend/internal/infrastructure/logger"
	"github.com/eventhub/backend/internal/infrastructure/telemetry"
	"github.com/eventhub/backend/internal/interfaces/http/dto"
	"github.com/eventhub/backend/internal/interfaces/http/handler"
	"github.com/eventhub/backend/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers mounted by New
type Handlers struct {
	Invoices  *handler.InvoiceHandler
	Payments  *handler.PaymentHandler
	Callbacks *handler.PaymentCallbackHandler
	System    *handler.SystemHandler
}

// Config holds the dependencies of the HTTP engine.
// Meters may be nil; tracing follows Tracing.Enabled.
type Config struct {
	Logger     *zap.Logger
	HTTP       config.HTTPConfig
	Swagger    config.SwaggerConfig
	Tracing    middleware.TracingConfig
	Meters     *telemetry.MeterProvider
	JWTService *auth.JWTService
	Handlers   Handlers
}

// New builds the gin engine with the global middleware stack and every route
func New(cfg Config) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request id first so every later layer can log and tag it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(cfg.Tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(cfg.Meters))
	engine.Use(logger.GinMiddleware(log, logger.WithSkipPaths("/health")))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.NoRoute(func(c *gin.Context) {
		(&handler.BaseHandler{}).Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Route not found")
	})

	h := cfg.Handlers
	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	jwtCfg := middleware.DefaultJWTConfig(cfg.JWTService)
	jwtCfg.Logger = log
	authenticate := middleware.JWTAuthMiddlewareWithConfig(jwtCfg)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, authenticate),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithAPIVersion("v1"))

	// Gateway notifications authenticate by signature and are mounted
	// ahead of the bearer-protected groups
	if h.Callbacks != nil {
		callbacks := NewDomainGroup("payment-callbacks", "/payments/callback")
		callbacks.POST("/momo", h.Callbacks.HandleMoMoCallback)
		callbacks.GET("/vnpay", h.Callbacks.HandleVNPayCallback)
		callbacks.POST("/vnpay", h.Callbacks.HandleVNPayCallback)
		r.Register(callbacks)
	}

	secured := NewDomainGroup("billing", "").
		Use(authenticate, middleware.TracingAttributeInjector())

	if h.Invoices != nil {
		secured.GET("/events/:eventId/invoice", h.Invoices.GetEventInvoice)
		secured.GET("/invoices/:id", h.Invoices.GetInvoice)

		admin := secured.Group("admin", "").Use(middleware.RequireAdmin())
		admin.GET("/invoices", h.Invoices.ListInvoices)
		admin.PUT("/invoices/:id/status", h.Invoices.UpdateInvoiceStatus)
		admin.DELETE("/invoices/:id", h.Invoices.DeleteInvoice)
	}
	if h.Payments != nil {
		secured.POST("/invoices/:id/payments", h.Payments.InitiatePayment)
		secured.GET("/payments/:transactionId", h.Payments.GetPaymentStatus)
	}
	if h.System != nil {
		secured.GET("/system/info", h.System.GetSystemInfo)
	}
	r.Register(secured)

	r.Setup()
	return engine
}

func corsConfig(httpCfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = httpCfg.CORSAllowOrigins
	if len(httpCfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = httpCfg.CORSAllowMethods
	}
	if len(httpCfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = httpCfg.CORSAllowHeaders
	}
	cors.MaxAge = 12 * time.Hour
	return cors
}
