package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm's logging through slog so store queries carry the
// request id and module of the calling request.
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

func NewGormLogger(slowThreshold time.Duration, level string) *GormLogger {
	return &GormLogger{
		SlowThreshold: slowThreshold,
		LogLevel:      gormLevel(level),
	}
}

func gormLevel(level string) gormlogger.LogLevel {
	switch ParseLevel(level) {
	case slog.LevelDebug:
		return gormlogger.Info
	case slog.LevelError:
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level

	return &newLogger
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.LogLevel >= gormlogger.Info {
		slog.InfoContext(ctx, fmt.Sprintf(msg, args...),
			slog.String("event", "store.log"),
		)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.LogLevel >= gormlogger.Warn {
		slog.WarnContext(ctx, fmt.Sprintf(msg, args...),
			slog.String("event", "store.log"),
		)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.LogLevel >= gormlogger.Error {
		slog.ErrorContext(ctx, fmt.Sprintf(msg, args...),
			slog.String("event", "store.log"),
		)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && l.LogLevel >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		slog.ErrorContext(ctx, "store query failed",
			slog.String("event", "store.query.fail"),
			slog.String("error", err.Error()),
			slog.Duration("duration", elapsed),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
		)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		sql, rows := fc()
		slog.WarnContext(ctx, "slow store query",
			slog.String("event", "store.query.slow"),
			slog.Duration("duration", elapsed),
			slog.Duration("threshold", l.SlowThreshold),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
		)
	case l.LogLevel >= gormlogger.Info:
		sql, rows := fc()
		slog.DebugContext(ctx, "store query",
			slog.String("event", "store.query"),
			slog.Duration("duration", elapsed),
			slog.String("sql", sql),
			slog.Int64("rows", rows),
		)
	}
}
