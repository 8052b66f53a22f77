package handler

import (
	log "log/slog"
	"net/http"
	"time"

	"GymChat/internal/api/config"
	"GymChat/internal/pkg/logger"
	"GymChat/internal/pkg/response"
	"GymChat/internal/pkg/security"
	"GymChat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type WsHandler struct {
	hub      *service.Hub
	messages service.MessageService
	// signer 为 nil 时不校验 token
	signer   *security.Signer
	cfg      config.RelayConfig
	upgrader websocket.Upgrader
}

func NewWsHandler(hub *service.Hub, messages service.MessageService, signer *security.Signer, cfg config.RelayConfig) *WsHandler {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = 64 * 1024
	}
	return &WsHandler{
		hub:      hub,
		messages: messages,
		signer:   signer,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *WsHandler) Connect(c *gin.Context) {
	var claims *security.ChatClaims
	if s.signer != nil {
		token := c.Query("token")
		if token == "" {
			response.ErrorStatus(c, service.UnauthorizedError)
			return
		}
		var err error
		claims, err = s.signer.ValidateToken(token)
		if err != nil {
			log.WarnContext(c.Request.Context(), "WS 鉴权失败", "err", err)
			response.ErrorStatus(c, service.UnauthorizedError)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "WS 协议升级失败", "err", err)
		return
	}

	ctx := logger.WithTrace(c.Request.Context())
	log.InfoContext(ctx, "WS 连接已建立", "remote", c.ClientIP())
	newSession(conn, s, claims).run(ctx)
}

func (s *WsHandler) pongWait() time.Duration {
	return time.Duration(s.cfg.PongWait) * time.Second
}

func (s *WsHandler) pingInterval() time.Duration {
	return time.Duration(s.cfg.PingInterval) * time.Second
}
