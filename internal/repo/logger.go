package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// GormLogger routes GORM diagnostics through zerolog. When the request
// context carries a logger (zerolog.Ctx) it is used, so slow queries are
// correlated with the request that issued them.
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

// NewGormLogger returns a GormLogger with a 200ms slow-query threshold.
func NewGormLogger(level gormlogger.LogLevel) *GormLogger {
	return &GormLogger{LogLevel: level, SlowThreshold: 200 * time.Millisecond}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		l.from(ctx).Info().Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		l.from(ctx).Warn().Msg(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		l.from(ctx).Error().Msg(fmt.Sprintf(msg, data...))
	}
}

// ParamsFilter keeps bound values (phone queries, API keys) out of the logs.
func (l *GormLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.LogLevel >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		sql, rows := fc()
		l.from(ctx).Error().
			Err(err).
			Str("file", utils.FileWithLineNum()).
			Str("sql", sql).
			Int64("rows", rows).
			Dur("elapsed", elapsed).
			Msg("gorm.query")
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		sql, rows := fc()
		l.from(ctx).Warn().
			Str("file", utils.FileWithLineNum()).
			Str("sql", sql).
			Int64("rows", rows).
			Dur("elapsed", elapsed).
			Dur("threshold", l.SlowThreshold).
			Msg("gorm.slow_query")
	case l.LogLevel == gormlogger.Info:
		sql, rows := fc()
		l.from(ctx).Debug().
			Str("sql", sql).
			Int64("rows", rows).
			Dur("elapsed", elapsed).
			Msg("gorm.query")
	}
}

func (l *GormLogger) from(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if lg := zerolog.Ctx(ctx); lg != nil && lg.GetLevel() != zerolog.Disabled {
			return lg
		}
	}
	return &log.Logger
}
