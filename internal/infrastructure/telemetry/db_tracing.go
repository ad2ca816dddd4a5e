package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eventhub/backend/internal/infrastructure/config"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables in db.statement (dev only)
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingConfigFrom derives the tracing settings from application config
func DBTracingConfigFrom(tel config.TelemetryConfig, db config.DatabaseConfig) DBTracingConfig {
	thresh := tel.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = 200 * time.Millisecond
	}
	system := "postgresql"
	if db.Driver == config.DriverSQLite {
		system = "sqlite"
	}
	return DBTracingConfig{
		Enabled:         tel.Enabled && tel.DBTraceEnabled,
		LogFullSQL:      tel.DBLogFullSQL,
		SlowQueryThresh: thresh,
		DBSystem:        system,
	}
}

// DBTracingPlugin wraps the otelgorm plugin with slow query marking.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm installs otelgorm and the slow query callbacks on db.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := registerAroundCallbacks(db, "otel_timing", markQueryStart(tracingStartKey), p.afterQuery); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

func (p *DBTracingPlugin) afterQuery(_ string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}

		if elapsed, ok := queryElapsed(ctx, tracingStartKey); ok && elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

type queryStartKey string

const (
	tracingStartKey queryStartKey = "otel_query_start_time"
	metricsStartKey queryStartKey = "db_metrics_start_time"
)

func markQueryStart(key queryStartKey) func(string) func(*gorm.DB) {
	return func(string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			ctx := db.Statement.Context
			if ctx == nil {
				ctx = context.Background()
			}
			db.Statement.Context = context.WithValue(ctx, key, time.Now())
		}
	}
}

func queryElapsed(ctx context.Context, key queryStartKey) (time.Duration, bool) {
	start, ok := ctx.Value(key).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// registerAroundCallbacks registers before/after hooks for every gorm processor.
// The factories receive the SQL operation the processor performs ("" for row/raw).
func registerAroundCallbacks(db *gorm.DB, prefix string, before, after func(op string) func(*gorm.DB)) error {
	cb := db.Callback()
	steps := []struct {
		name string
		fn   func() error
	}{
		{"create", func() error {
			if err := cb.Create().Before("gorm:create").Register(prefix+":before_create", before("INSERT")); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register(prefix+":after_create", after("INSERT"))
		}},
		{"query", func() error {
			if err := cb.Query().Before("gorm:query").Register(prefix+":before_query", before("SELECT")); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register(prefix+":after_query", after("SELECT"))
		}},
		{"update", func() error {
			if err := cb.Update().Before("gorm:update").Register(prefix+":before_update", before("UPDATE")); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register(prefix+":after_update", after("UPDATE"))
		}},
		{"delete", func() error {
			if err := cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", before("DELETE")); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register(prefix+":after_delete", after("DELETE"))
		}},
		{"row", func() error {
			if err := cb.Row().Before("gorm:row").Register(prefix+":before_row", before("")); err != nil {
				return err
			}
			return cb.Row().After("gorm:row").Register(prefix+":after_row", after(""))
		}},
		{"raw", func() error {
			if err := cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before("")); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after(""))
		}},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return err
		}
	}
	return nil
}
