// ABOUTME: GORM logger backed by zap
// ABOUTME: Routes track store queries into the application log
package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts a zap logger to gorm's logger.Interface.
// Queries are logged at debug; slow queries and errors at warn.
type GormLogger struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewGormLogger creates a gorm logger; a zero slowThreshold disables slow query warnings
func NewGormLogger(logger *zap.Logger, slowThreshold time.Duration) *GormLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormLogger{logger: logger, slowThreshold: slowThreshold}
}

// LogMode is a no-op; the zap level decides what is written
func (g *GormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return g
}

func (g *GormLogger) Info(_ context.Context, msg string, data ...any) {
	g.logger.Debug(fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	g.logger.Warn(fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Error(_ context.Context, msg string, data ...any) {
	g.logger.Error(fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		g.logger.Warn("Query failed", append(fields, zap.Error(err))...)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold:
		g.logger.Warn("Slow query", fields...)
	default:
		g.logger.Debug("Query", fields...)
	}
}
