package middleware

import (
	"bytes"
	"io"
	log "log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const auditBodyLimit = 16384

// AuditOptions SkipPaths 完全跳过；PrivatePrefixes 下的响应体含聊天内容，不记录
type AuditOptions struct {
	SkipPaths       []string
	PrivatePrefixes []string
}

// capturingWriter 截留响应体前 auditBodyLimit 字节
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	if room := auditBodyLimit - w.body.Len(); room > 0 {
		w.body.Write(b[:min(len(b), room)])
	}
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// AuditMiddleware 记录 REST 请求与响应，ws 升级请求应放入 SkipPaths
func AuditMiddleware(opts AuditOptions) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}
	private := func(path string) bool {
		for _, prefix := range opts.PrivatePrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"query", c.Request.URL.Query(),
			"content_length", c.Request.ContentLength,
		}
		// 只记录 JSON 请求体，附件等二进制内容不落日志
		if c.ContentType() == gin.MIMEJSON && c.Request.Body != nil {
			raw, _ := io.ReadAll(io.LimitReader(c.Request.Body, auditBodyLimit))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), c.Request.Body))
			attrs = append(attrs, "req_body", string(raw))
		}
		log.InfoContext(ctx, "Recv Request", attrs...)

		var captured *capturingWriter
		if !private(path) {
			captured = &capturingWriter{ResponseWriter: c.Writer}
			c.Writer = captured
		}
		start := time.Now()

		c.Next()

		log.InfoContext(ctx, "Send Response", "status", c.Writer.Status(), "latency", time.Since(start))
		if captured != nil {
			log.DebugContext(ctx, "Response Body", "res_body", captured.body.String())
		}
	}
}
