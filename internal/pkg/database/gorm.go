package database

import (
	"context"
	"fmt"
	log "log/slog"
	"time"

	"GymChat/internal/api/config"
	"GymChat/internal/pkg/logger"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	dialTimeout = 5 * time.Second
	readTimeout = 10 * time.Second
)

// NormalizeDSN 解析 DSN 并补齐目录查询需要的参数
func NormalizeDSN(raw string) (*driver.Config, error) {
	dsn, err := driver.ParseDSN(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid database dsn: %w", err)
	}
	// 时间字段按 time.Time 扫描
	dsn.ParseTime = true
	if dsn.Timeout == 0 {
		dsn.Timeout = dialTimeout
	}
	if dsn.ReadTimeout == 0 {
		dsn.ReadTimeout = readTimeout
	}
	return dsn, nil
}

// NewGormDB 会员与员工目录的只读连接
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	dsn, err := NormalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(mysql.New(mysql.Config{DSN: dsn.FormatDSN(), DSNConfig: dsn}), &gorm.Config{
		Logger:                 logger.NewGormLogger(),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err = sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", err)
	}

	log.Info("Database connection established", "addr", dsn.Addr, "db", dsn.DBName)
	return db, nil
}
