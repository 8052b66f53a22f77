package logger

import (
	"fmt"
	log "log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupGin 访问日志与 panic 恢复都走 slog，trace_id 由 ContextHandler 补齐
func SetupGin(r *gin.Engine, skipPaths ...string) {
	r.Use(accessLog(skipPaths), gin.CustomRecovery(recoverToLog))
}

func accessLog(skipPaths []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(skipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := log.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = log.LevelError
		case status >= http.StatusBadRequest:
			level = log.LevelWarn
		}
		attrs := []log.Attr{
			log.String("method", c.Request.Method),
			log.String("path", c.FullPath()),
			log.Int("status", status),
			log.Duration("latency", time.Since(start)),
			log.String("client_ip", c.ClientIP()),
			log.Int("size", c.Writer.Size()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			attrs = append(attrs, log.String("errors", errs.String()))
		}
		log.LogAttrs(c.Request.Context(), level, "GIN_ACCESS", attrs...)
	}
}

func recoverToLog(c *gin.Context, recovered any) {
	log.ErrorContext(c.Request.Context(), "HTTP handler panic",
		"path", c.Request.URL.Path,
		"panic", fmt.Sprint(recovered),
	)
	c.AbortWithStatus(http.StatusInternalServerError)
}
