package logger

import (
	"context"
	"errors"
	log "log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSlow = 100 * time.Millisecond

// 这些命令的参数含凭据或聊天正文，只记录命令名
var redactedArgs = map[string]bool{
	"auth":    true,
	"hello":   true,
	"publish": true,
	"hset":    true,
}

// RedisLoggerHook 房间广播与附件登记的命令日志
type RedisLoggerHook struct{}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{}
}

func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "Redis Dial Error", "addr", addr, "latency", time.Since(start), "err", err)
		}
		return conn, err
	}
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)

		if err != nil && ignorableRedisErr(cmd, err) {
			return err
		}
		if err == nil && elapsed <= redisSlow {
			return nil
		}

		attrs := commandAttrs(cmd)
		attrs = append(attrs, log.Duration("latency", elapsed))
		if err != nil {
			log.LogAttrs(ctx, log.LevelError, "Redis Error", append(attrs, log.Any("err", err))...)
		} else {
			log.LogAttrs(ctx, log.LevelWarn, "Redis Slow", attrs...)
		}
		return err
	}
}

func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if err != nil {
			log.ErrorContext(ctx, "Redis Pipeline Error", "cmd_count", len(cmds), "latency", time.Since(start), "err", err)
		}
		return err
	}
}

func commandAttrs(cmd redis.Cmder) []log.Attr {
	name := cmd.Name()
	attrs := []log.Attr{log.String("command", name)}
	args := cmd.Args()
	if redactedArgs[name] {
		// 保留 key（频道名、哈希名），丢弃其余参数
		if len(args) > 1 {
			attrs = append(attrs, log.Any("key", args[1]))
		}
		return attrs
	}
	return append(attrs, log.Any("args", args))
}

func ignorableRedisErr(cmd redis.Cmder, err error) bool {
	if errors.Is(err, redis.Nil) {
		return true
	}
	// 老版本服务端不支持 CLIENT SETINFO
	return cmd.Name() == "client" && strings.Contains(err.Error(), "setinfo")
}
