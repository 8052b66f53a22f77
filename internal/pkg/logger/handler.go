package logger

import (
	"context"
	"errors"
	log "log/slog"
)

// TeeHandler 将日志分发到多个 Handler
type TeeHandler struct {
	handlers []log.Handler
}

func NewTeeHandler(handlers ...log.Handler) *TeeHandler {
	return &TeeHandler{handlers: handlers}
}

func (s *TeeHandler) Enabled(ctx context.Context, level log.Level) bool {
	for _, h := range s.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle 远程连接断开不影响本地输出
func (s *TeeHandler) Handle(ctx context.Context, r log.Record) error {
	var errs []error
	for _, h := range s.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *TeeHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &TeeHandler{handlers: mapHandlers(s.handlers, func(h log.Handler) log.Handler { return h.WithAttrs(attrs) })}
}

func (s *TeeHandler) WithGroup(name string) log.Handler {
	return &TeeHandler{handlers: mapHandlers(s.handlers, func(h log.Handler) log.Handler { return h.WithGroup(name) })}
}

func mapHandlers(hs []log.Handler, f func(log.Handler) log.Handler) []log.Handler {
	out := make([]log.Handler, len(hs))
	for i, h := range hs {
		out[i] = f(h)
	}
	return out
}

// FilterHandler keep 返回 false 的记录被丢弃
type FilterHandler struct {
	next log.Handler
	keep func(r log.Record) bool
}

func (s *FilterHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *FilterHandler) Handle(ctx context.Context, r log.Record) error {
	if !s.keep(r) {
		return nil
	}
	return s.next.Handle(ctx, r)
}

func (s *FilterHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &FilterHandler{next: s.next.WithAttrs(attrs), keep: s.keep}
}

func (s *FilterHandler) WithGroup(name string) log.Handler {
	return &FilterHandler{next: s.next.WithGroup(name), keep: s.keep}
}

// NewRemoteFilterHandler 只上报带 trace_id 的记录（请求、ws 会话、后台任务），启动日志留在本地
func NewRemoteFilterHandler(next log.Handler) *FilterHandler {
	return &FilterHandler{next: next, keep: hasTraceID}
}

func hasTraceID(r log.Record) bool {
	found := false
	r.Attrs(func(a log.Attr) bool {
		if a.Key == TraceIDKey && a.Value.String() != "" {
			found = true
			return false
		}
		return true
	})
	return found
}
