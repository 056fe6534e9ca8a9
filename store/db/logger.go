package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kochabx/authsvc/log"
)

// gormLogger 将 gorm 日志写入 zerolog
type gormLogger struct {
	logger *log.Logger
	level  logger.LogLevel
	slow   time.Duration
}

func newGormLogger(l *log.Logger, level logger.LogLevel, slow time.Duration) logger.Interface {
	return &gormLogger{logger: l, level: level, slow: slow}
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Info {
		g.event(zerolog.InfoLevel).Msg(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Warn {
		g.event(zerolog.WarnLevel).Msg(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Error {
		g.event(zerolog.ErrorLevel).Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace 记录失败语句与慢查询，info 级别下记录全部语句
func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent && g.slow <= 0 {
		return
	}

	elapsed := time.Since(begin)
	var e *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error:
		e = g.event(zerolog.ErrorLevel).Err(err)
	case g.slow > 0 && elapsed > g.slow:
		e = g.event(zerolog.WarnLevel).Dur("threshold", g.slow)
	case g.level >= logger.Info:
		e = g.event(zerolog.DebugLevel)
	default:
		return
	}

	sql, rows := fc()
	e.Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query")
}

func (g *gormLogger) event(level zerolog.Level) *zerolog.Event {
	return g.logger.WithLevel(level).Str("component", "gorm")
}
