package logger

import (
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// TraceIDKey Context 中的 Key
const TraceIDKey = "trace_id"

// ContextHandler 从 ctx 中提取 trace_id
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

// WithTrace 为后台任务（ws 会话、worker）生成独立 trace_id
func WithTrace(ctx context.Context) context.Context {
	if _, ok := ctx.Value(TraceIDKey).(string); ok {
		return ctx
	}
	return ContextWithTraceID(ctx, uuid.NewString())
}

// ContextWithTraceID 绑定指定 trace_id
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	//nolint:staticcheck
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// TraceID 取出 ctx 中的 trace_id
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(TraceIDKey).(string)
	return id
}
