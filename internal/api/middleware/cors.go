package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware 聊天页面跨域；allowOrigins 为空或含 "*" 时放行所有来源
func CORSMiddleware(allowOrigins ...string) gin.HandlerFunc {
	anyOrigin := len(allowOrigins) == 0 || slices.Contains(allowOrigins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := origin != "" && (anyOrigin || slices.Contains(allowOrigins, origin))
		if allowed {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")
			h.Set("Access-Control-Expose-Headers", "X-Trace-ID")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			if origin != "" && !allowed {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
