package logger

import (
	log "log/slog"
	"net"
	"os"
	"strings"
	"time"

	"GymChat/internal/api/config"
)

// ParseLevel 未知级别按 info 处理
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

// InitLogger 标准输出 + 可选 Logstash 远程上报
func InitLogger(cfg config.LoggerConfig) {
	opts := &log.HandlerOptions{Level: ParseLevel(cfg.Level)}
	hStdout := log.NewJSONHandler(os.Stdout, opts)

	var finalHandler log.Handler = hStdout

	if cfg.Logstash.Address != "" {
		conn, err := net.DialTimeout("tcp", cfg.Logstash.Address, 3*time.Second)
		if err == nil {
			hRemote := log.NewJSONHandler(conn, opts).
				WithAttrs([]log.Attr{
					log.String("target_index", cfg.Logstash.Index),
					log.String("log_token", cfg.Logstash.Token),
				})

			finalHandler = NewTeeHandler(hStdout, NewRemoteFilterHandler(hRemote))
		} else {
			log.Warn("Failed to connect to Logstash, logging to stdout only", "err", err)
		}
	}

	log.SetDefault(log.New(&ContextHandler{finalHandler}))
}

// InitClientLogger 客户端日志写 stderr，不干扰交互输出
func InitClientLogger(level string) {
	h := log.NewTextHandler(os.Stderr, &log.HandlerOptions{Level: ParseLevel(level)})
	log.SetDefault(log.New(&ContextHandler{h}))
}
