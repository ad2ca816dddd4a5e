package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	billingapp "github.com/eventhub/backend/internal/application/billing"
	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/domain/shared"
	"github.com/eventhub/backend/internal/infrastructure/auth"
	"github.com/eventhub/backend/internal/infrastructure/cache"
	"github.com/eventhub/backend/internal/infrastructure/config"
	"github.com/eventhub/backend/internal/infrastructure/logger"
	"github.com/eventhub/backend/internal/infrastructure/mongostore"
	"github.com/eventhub/backend/internal/infrastructure/payment"
	"github.com/eventhub/backend/internal/infrastructure/persistence"
	"github.com/eventhub/backend/internal/infrastructure/telemetry"
	"github.com/eventhub/backend/internal/interfaces/http/handler"
	"github.com/eventhub/backend/internal/interfaces/http/middleware"
	"github.com/eventhub/backend/internal/interfaces/http/router"

	_ "github.com/eventhub/backend/docs"
)

//	@title			EventHub Billing API
//	@version		1.0
//	@description	Invoicing, MoMo/VNPay payments and callback reconciliation for event planning

//	@contact.name	EventHub Platform Team
//	@contact.url	https://github.com/eventhub/backend

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg.App, cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry providers are no-ops when disabled
	traceCfg, metricCfg, logCfg := telemetry.FromAppConfig(cfg.App, cfg.Telemetry)
	tracerProvider, err := telemetry.NewTracerProvider(ctx, traceCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, metricCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, logCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		log = logProvider.Bridge(log, zapcore.InfoLevel)
	}

	log.Info("Starting EventHub billing",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("catalog_source", cfg.Catalog.Source),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Postgres schemas are owned by cmd/migrate; sqlite is a local development store
	if cfg.Database.Driver == config.DriverSQLite {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database), log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, cfg.Telemetry.DBSlowQueryThresh, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	}

	checks := map[string]handler.HealthChecker{
		"database": handler.HealthCheckFunc(func(context.Context) error { return db.Ping() }),
	}

	events, catalog, closeCatalog := openCatalog(ctx, cfg, db, checks, log)
	defer closeCatalog()

	locker, err := cache.NewLockerFactory(cfg.Redis, cache.WithLogger(log)).CreateLocker(ctx)
	if err != nil {
		log.Fatal("Failed to create keyed locker", zap.Error(err))
	}
	defer func() {
		if err := locker.Close(); err != nil {
			log.Error("Error closing keyed locker", zap.Error(err))
		}
	}()
	if redisLocker, ok := locker.(*cache.RedisLocker); ok {
		checks["redis"] = redisLocker
	}

	gateways, err := buildGateways(cfg.Payment, log)
	if err != nil {
		log.Fatal("Failed to configure payment gateways", zap.Error(err))
	}
	txIDs, err := payment.NewSnowflakeTransactionIDs(cfg.Payment.NodeID, cfg.Payment.TransactionPrefix)
	if err != nil {
		log.Fatal("Failed to create transaction id generator", zap.Error(err))
	}

	var billingMetrics *telemetry.BillingMetrics
	if meterProvider.IsEnabled() {
		billingMetrics, err = telemetry.NewBillingMetrics(telemetry.BillingMetricsConfig{
			Meter:  meterProvider.Meter("eventhub.billing"),
			Logger: log,
		})
		if err != nil {
			log.Warn("Failed to create billing metrics", zap.Error(err))
		}
	}

	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	callbackLogRepo := persistence.NewGormCallbackLogRepository(db.DB)

	invoiceService := billingapp.NewInvoiceService(billingapp.InvoiceServiceConfig{
		Invoices: invoiceRepo,
		Payments: paymentRepo,
		Events:   events,
		Catalog:  catalog,
		Locker:   locker,
		LockCfg:  shared.LockConfig{TTL: cfg.Invoice.LockTTL, Wait: cfg.Invoice.LockWait},
		Metrics:  billingMetrics,
		Logger:   log,
	})
	paymentService := billingapp.NewPaymentService(billingapp.PaymentServiceConfig{
		Invoices:       invoiceRepo,
		Payments:       paymentRepo,
		Events:         events,
		Gateways:       gateways,
		TransactionIDs: txIDs,
		ReturnURLHosts: cfg.Payment.ReturnURLHosts,
		Metrics:        billingMetrics,
		Logger:         log,
	})
	reconciliationService := billingapp.NewReconciliationService(billingapp.ReconciliationServiceConfig{
		Gateways:     gateways,
		Invoices:     invoiceRepo,
		Payments:     paymentRepo,
		CallbackLogs: callbackLogRepo,
		Locker:       locker,
		LockCfg:      shared.LockConfig{TTL: cfg.Payment.CallbackLockTTL, Wait: cfg.Payment.CallbackLockWait},
		Metrics:      billingMetrics,
		Logger:       log,
	})

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = traceCfg.ServiceName
	tracingCfg.Enabled = tracerProvider.IsEnabled()

	engine := router.New(router.Config{
		Logger:     log,
		HTTP:       cfg.HTTP,
		Swagger:    cfg.Swagger,
		Tracing:    tracingCfg,
		Meters:     meterProvider,
		JWTService: auth.NewJWTService(cfg.JWT),
		Handlers: router.Handlers{
			Invoices:  handler.NewInvoiceHandler(invoiceService),
			Payments:  handler.NewPaymentHandler(paymentService),
			Callbacks: handler.NewPaymentCallbackHandler(reconciliationService),
			System:    handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, checks),
		},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	shutdownTelemetry(shutdownCtx, log, tracerProvider, meterProvider, logProvider)

	log.Info("Server exited gracefully")
}

// openCatalog selects where events and catalog services are read from.
// The returned func releases the catalog connection.
func openCatalog(
	ctx context.Context,
	cfg *config.Config,
	db *persistence.Database,
	checks map[string]handler.HealthChecker,
	log *zap.Logger,
) (planning.EventReader, planning.CatalogReader, func()) {
	if cfg.Catalog.Source != config.CatalogSourceMongo {
		return persistence.NewGormEventReader(db.DB), persistence.NewGormCatalogReader(db.DB), func() {}
	}

	store, err := mongostore.Connect(ctx, cfg.Catalog)
	if err != nil {
		log.Fatal("Failed to connect to catalog store", zap.Error(err))
	}
	checks["catalog"] = store
	log.Info("Catalog store connected",
		zap.String("database", cfg.Catalog.MongoDatabase),
		zap.String("events", cfg.Catalog.EventsCollection),
		zap.String("services", cfg.Catalog.ServicesCollection),
	)

	return store.EventReader(), store.CatalogReader(), func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("Error closing catalog store", zap.Error(err))
		}
	}
}

// buildGateways registers every enabled payment gateway
func buildGateways(cfg config.PaymentConfig, log *zap.Logger) (*billingapp.GatewayRegistry, error) {
	var gateways []billing.PaymentGateway

	if cfg.MoMo.Enabled {
		momoCfg, err := payment.NewMoMoConfigBuilder().
			SetCredentials(cfg.MoMo.PartnerCode, cfg.MoMo.AccessKey, cfg.MoMo.SecretKey).
			SetBaseURL(cfg.MoMo.Endpoint).
			SetRedirectURL(cfg.MoMo.RedirectURL).
			SetIPNURL(cfg.MoMo.IPNURL).
			SetRequestType(cfg.MoMo.RequestType).
			SetTimeout(cfg.MoMo.Timeout).
			Build()
		if err != nil {
			return nil, err
		}
		momoCfg.Lang = cfg.MoMo.Lang
		adapter, err := payment.NewMoMoAdapter(momoCfg)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, adapter)
	}

	if cfg.VNPay.Enabled {
		vnpayCfg, err := payment.NewVNPayConfigBuilder().
			SetCredentials(cfg.VNPay.TmnCode, cfg.VNPay.HashSecret).
			SetSandbox(cfg.VNPay.Sandbox).
			SetPaymentURL(cfg.VNPay.PaymentURL).
			SetReturnURL(cfg.VNPay.ReturnURL).
			SetLocale(cfg.VNPay.Locale).
			SetExpireAfter(cfg.VNPay.ExpireAfter).
			Build()
		if err != nil {
			return nil, err
		}
		adapter, err := payment.NewVNPayAdapter(vnpayCfg)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, adapter)
	}

	registry := billingapp.NewGatewayRegistry(billing.GatewayType(strings.ToUpper(cfg.DefaultGateway)), gateways...)
	for _, gw := range gateways {
		log.Info("Payment gateway registered", zap.String("gateway", string(gw.GatewayType())))
	}
	return registry, nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

func shutdownTelemetry(ctx context.Context, log *zap.Logger, providers ...shutdowner) {
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
}
