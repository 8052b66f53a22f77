package api

import (
	"net/http"

	"GymChat/internal/api/middleware"
	"GymChat/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

const wsPath = "/chat/ws"

// SetupRouter allowOrigins 为空时不限制跨域来源
func SetupRouter(group *HandlersGroup, allowOrigins ...string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware(middleware.AuditOptions{
		SkipPaths:       []string{wsPath, "/ping"},
		PrivatePrefixes: []string{"/messages/"},
	}))
	r.Use(middleware.CORSMiddleware(allowOrigins...))
	// 长连接的访问日志由 ws 会话自行记录
	logger.SetupGin(r, wsPath, "/ping")

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"message": "pong",
			"data":    nil,
		})
	})

	chatGroup := r.Group("/chat")
	{
		chatGroup.GET("/ws", group.WsHandler.Connect)
		chatGroup.POST("/upload", group.MediaHandler.Upload)
	}

	r.GET("/messages/:userA/:userB", group.MessageHandler.GetConversation)
	r.GET("/member/list", group.DirectoryHandler.ListMembers)
	r.GET("/staffmember/list", group.DirectoryHandler.ListStaffMembers)

	return r
}
