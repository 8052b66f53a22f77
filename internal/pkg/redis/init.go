package redis

import (
	"context"
	"fmt"
	log "log/slog"
	"time"

	"GymChat/internal/api/config"
	"GymChat/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

var Rdb *redis.Client

const pingTimeout = 5 * time.Second

// newOptions 房间订阅长期占用一个连接，连接池至少保留余量
func newOptions(cfg config.RedisConfig) *redis.Options {
	poolSize := cfg.PoolSize
	if poolSize < 4 {
		poolSize = 4
	}
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		DialTimeout:  pingTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	}
}

// InitRedis 初始化房间广播与附件登记用的客户端
func InitRedis(cfg config.RedisConfig) error {
	rdb := redis.NewClient(newOptions(cfg))
	rdb.AddHook(logger.NewRedisLogger())

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	Rdb = rdb
	log.Info("Redis connection established", "addr", cfg.Addr, "db", cfg.DB)
	return nil
}

func Close() error {
	if Rdb == nil {
		return nil
	}
	return Rdb.Close()
}
