package logger

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

const sqlLogLimit = 2000

// GormLogger 目录查询日志；未命中记录不算错误
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger() *GormLogger {
	return &GormLogger{level: gormlogger.Warn, slowThreshold: 200 * time.Millisecond}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	n := *l
	n.level = level
	return &n
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, log.LevelInfo, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, log.LevelWarn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, log.LevelError, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, level log.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	log.Log(ctx, level, "gorm: "+msg, "data", data, "source", utils.FileWithLineNum())
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var level log.Level
	msg := "MySQL Query"
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound):
		level, msg = log.LevelError, "MySQL Error"
	case elapsed > l.slowThreshold:
		level, msg = log.LevelWarn, "MySQL Slow"
	case l.level >= gormlogger.Info:
		level = log.LevelInfo
	default:
		return
	}

	sql, rows := fc()
	if len(sql) > sqlLogLimit {
		sql = sql[:sqlLogLimit] + "...[truncated]"
	}
	attrs := []log.Attr{
		log.String("sql", strings.TrimSpace(sql)),
		log.Int64("rows", rows),
		log.Duration("latency", elapsed),
		log.String("source", utils.FileWithLineNum()),
	}
	if err != nil && level == log.LevelError {
		attrs = append(attrs, log.Any("err", err))
	}
	log.LogAttrs(ctx, level, msg, attrs...)
}
