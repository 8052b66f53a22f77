package middleware

import (
	"GymChat/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	traceHeader = "X-Trace-ID"
	// 浏览器 WebSocket 无法设置请求头，允许用查询参数带上
	traceQuery = "trace"
)

// TraceMiddleware 沿用上游 trace_id，没有则生成
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = c.Query(traceQuery)
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(logger.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(logger.ContextWithTraceID(c.Request.Context(), traceID))
		c.Header(traceHeader, traceID)
		c.Next()
	}
}
