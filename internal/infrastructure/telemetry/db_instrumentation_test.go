package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/eventhub/backend/internal/infrastructure/config"
)

type ledgerRow struct {
	ID     uint `gorm:"primaryKey"`
	Amount int64
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&ledgerRow{}))
	return db
}

func TestDBTracingConfigFrom(t *testing.T) {
	cfg := DBTracingConfigFrom(
		config.TelemetryConfig{Enabled: true, DBTraceEnabled: true},
		config.DatabaseConfig{Driver: config.DriverSQLite},
	)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "sqlite", cfg.DBSystem)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)

	cfg = DBTracingConfigFrom(config.TelemetryConfig{DBTraceEnabled: true}, config.DatabaseConfig{Driver: config.DriverPostgres})
	assert.False(t, cfg.Enabled, "requires the telemetry master switch")
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_DisabledIsNoop(t *testing.T) {
	db := openTestDB(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{}, nil)
	require.NoError(t, plugin.RegisterOtelGorm(db))
	assert.Nil(t, db.Callback().Query().Get("otel_timing:after_query"))
}

func TestDBTracingPlugin_AnnotatesSpans(t *testing.T) {
	db := openTestDB(t)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite", SlowQueryThresh: -1}, zap.NewNop())
	require.NoError(t, registerAroundCallbacks(db, "otel_timing", markQueryStart(tracingStartKey), plugin.afterQuery))

	ctx, span := tp.Tracer("test").Start(context.Background(), "invoice.get")
	require.NoError(t, db.WithContext(ctx).Create(&ledgerRow{Amount: 10}).Error)
	err := db.WithContext(ctx).Table("missing_table").Find(&[]ledgerRow{}).Error
	require.Error(t, err)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Equal(t, "missing_table", attrs["db.sql.table"].AsString())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestDBMetrics_RecordsQueriesAndPool(t *testing.T) {
	db := openTestDB(t)
	mp, reader := newTestMeter(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	m, err := NewDBMetrics(mp.Meter("db.client"), sqlDB, time.Nanosecond, nil)
	require.NoError(t, err)
	t.Cleanup(m.Stop)
	require.NoError(t, db.Use(m))

	require.NoError(t, db.Create(&ledgerRow{Amount: 1}).Error)
	require.NoError(t, db.Create(&ledgerRow{Amount: 2}).Error)
	var rows []ledgerRow
	require.NoError(t, db.Find(&rows).Error)
	var total int64
	require.NoError(t, db.Raw("SELECT SUM(amount) FROM ledger_rows").Scan(&total).Error)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumFor(t, metrics["db_query_total"], AttrDBOperation.String("INSERT")))
	assert.Equal(t, int64(2), sumFor(t, metrics["db_query_total"], AttrDBOperation.String("SELECT")))
	assert.Equal(t, int64(4), sumFor(t, metrics["db_slow_query_total"], AttrDBTable.String("ledger_rows"))+
		sumFor(t, metrics["db_slow_query_total"], AttrDBTable.String("unknown")))
	assert.Contains(t, metrics, "db_pool_connections_max")
}

func TestNewDBMetrics_NilMeter(t *testing.T) {
	_, err := NewDBMetrics(nil, nil, 0, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestRegisterDBMetrics_DisabledProvider(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), Config{}, zap.NewNop())
	require.NoError(t, err)

	m, err := RegisterDBMetrics(openTestDB(t), mp, 0, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestDetectOperationType(t *testing.T) {
	assert.Equal(t, "SELECT", detectOperationType("  select 1"))
	assert.Equal(t, "UPDATE", detectOperationType("UPDATE invoices SET status = ?"))
	assert.Equal(t, "OTHER", detectOperationType("PRAGMA foreign_keys"))
}
