package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func sqlFn(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info)
	warn := gl.LogMode(gormlogger.Warn).(*GormLogger)

	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, gormlogger.Warn, warn.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")

	t.Run("error includes sql", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Warn)
		gl.Trace(ctx, time.Now(), sqlFn(`INSERT INTO "invoices"`), errors.New("unique violation"))

		entries := recorded.FilterMessage("SQL Error").All()
		require.Len(t, entries, 1)
		assert.Equal(t, `INSERT INTO "invoices"`, entries[0].ContextMap()["sql"])
		assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	})

	t.Run("record not found is ignored by default", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Warn)
		gl.Trace(ctx, time.Now(), sqlFn("SELECT"), gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())

		gl, recorded = newObservedGormLogger(gormlogger.Warn, WithIgnoreRecordNotFoundError(false))
		gl.Trace(ctx, time.Now(), sqlFn("SELECT"), gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("slow query warns", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gl.Trace(ctx, time.Now().Add(-time.Second), sqlFn("SELECT 1"), nil)
		assert.Equal(t, 1, recorded.FilterMessage("Slow SQL").Len())
	})

	t.Run("info omits sql unless enabled", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info)
		gl.Trace(ctx, time.Now(), sqlFn("SELECT 1"), nil)
		require.Equal(t, 1, recorded.Len())
		assert.NotContains(t, recorded.All()[0].ContextMap(), "sql")

		gl, recorded = newObservedGormLogger(gormlogger.Info, WithFullSQL(true))
		gl.Trace(ctx, time.Now(), sqlFn("SELECT 1"), nil)
		assert.Equal(t, "SELECT 1", recorded.All()[0].ContextMap()["sql"])
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Silent)
		gl.Trace(ctx, time.Now(), sqlFn("SELECT 1"), errors.New("x"))
		assert.Zero(t, recorded.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
