package logger

import (
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

const mongoSlow = 200 * time.Millisecond

// NewMongoMonitor 消息文档含聊天正文，只记录命令名与集合
func NewMongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			if !log.Default().Enabled(ctx, log.LevelDebug) {
				return
			}
			collection, _ := evt.Command.Lookup(evt.CommandName).StringValueOK()
			log.DebugContext(ctx, "MongoDB Started",
				"command", evt.CommandName,
				"database", evt.DatabaseName,
				"collection", collection,
				"request_id", evt.RequestID,
			)
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			if evt.Duration > mongoSlow {
				log.WarnContext(ctx, "MongoDB Slow", "command", evt.CommandName, "latency", evt.Duration, "request_id", evt.RequestID)
			}
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			log.ErrorContext(ctx, "MongoDB Error", "command", evt.CommandName, "latency", evt.Duration, "request_id", evt.RequestID, "err", evt.Failure)
		},
	}
}
