package handler

import (
	"context"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"GymChat/internal/api/dto"
	"GymChat/internal/pkg/response"
	"GymChat/internal/pkg/security"
	"GymChat/internal/pkg/util"
	"GymChat/internal/service"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// session 一条 ws 连接：读循环处理事件，写循环独占写端
type session struct {
	conn   *websocket.Conn
	h      *WsHandler
	claims *security.ChatClaims

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	joined *dto.JoinRoomReq
}

func newSession(conn *websocket.Conn, h *WsHandler, claims *security.ChatClaims) *session {
	return &session{
		conn:   conn,
		h:      h,
		claims: claims,
		send:   make(chan []byte, h.cfg.SendBuffer),
		done:   make(chan struct{}),
	}
}

// Enqueue 队列满说明对端消费不过来，直接断开
func (s *session) Enqueue(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- frame:
		return true
	default:
		s.close()
		return false
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *session) run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writePump(ctx)
	}()

	s.readPump(ctx)
	s.close()
	wg.Wait()

	s.mu.Lock()
	joined := s.joined
	s.joined = nil
	s.mu.Unlock()
	if joined != nil {
		s.h.hub.Leave(joined.UserID, s)
		log.InfoContext(ctx, "WS 连接已断开", "userID", joined.UserID, "role", joined.UserRole)
	} else {
		log.InfoContext(ctx, "WS 连接已断开")
	}
}

func (s *session) readPump(ctx context.Context) {
	s.conn.SetReadLimit(s.h.cfg.MaxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.h.pongWait()))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.h.pongWait()))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WarnContext(ctx, "WS 读取失败", "err", err)
			}
			return
		}
		// 任何入站帧都说明对端存活
		_ = s.conn.SetReadDeadline(time.Now().Add(s.h.pongWait()))
		s.handleFrame(ctx, data)
	}
}

func (s *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.h.pingInterval())
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.WarnContext(ctx, "WS 推送失败", "err", err)
				s.close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (s *session) handleFrame(ctx context.Context, data []byte) {
	var ev dto.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		s.replyError(ctx, fmt.Errorf("%w: %v", service.ErrParamInvalid, err))
		return
	}

	var err error
	switch ev.Event {
	case dto.EventJoinRoom:
		err = s.join(ctx, ev.Data)
	case dto.EventSendMessage:
		err = s.sendMessage(ctx, ev.Data)
	default:
		err = fmt.Errorf("%w: %q", service.ErrUnknownEvent, ev.Event)
	}
	if err != nil {
		s.replyError(ctx, err)
	}
}

// join 一个连接同一时间只在一个房间
func (s *session) join(ctx context.Context, data json.RawMessage) error {
	var req dto.JoinRoomReq
	if err := decodePayload(data, &req); err != nil {
		return err
	}
	if s.claims != nil && !s.claims.Matches(req.UserID, req.UserRole) {
		return service.ErrIdentityMismatch
	}

	s.mu.Lock()
	prev := s.joined
	s.joined = &req
	s.mu.Unlock()

	if prev != nil && prev.UserID != req.UserID {
		s.h.hub.Leave(prev.UserID, s)
	}
	s.h.hub.Join(req.UserID, s)
	log.InfoContext(ctx, "joinRoom", "userID", req.UserID, "role", req.UserRole)
	return nil
}

func (s *session) sendMessage(ctx context.Context, data json.RawMessage) error {
	s.mu.Lock()
	joined := s.joined
	s.mu.Unlock()
	if joined == nil {
		return service.ErrNotJoined
	}

	var msg dto.MessageDTO
	if err := decodePayload(data, &msg); err != nil {
		return err
	}
	if msg.SenderID != joined.UserID || msg.SenderRole != joined.UserRole {
		return service.ErrSenderMismatch
	}

	_, err := s.h.messages.Accept(ctx, &msg)
	return err
}

func (s *session) replyError(ctx context.Context, err error) {
	code, msg := response.Resolve(err)
	log.WarnContext(ctx, "WS 帧被拒绝", "code", code, "err", err)
	frame, mErr := dto.NewEvent(dto.EventError, &dto.ErrorPayload{Code: code, Message: msg})
	if mErr != nil {
		return
	}
	s.Enqueue(frame)
}

func decodePayload(data json.RawMessage, out any) error {
	if len(data) == 0 {
		return service.ErrParamInvalid
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", service.ErrParamInvalid, err)
	}
	if err := util.ValidateDTO(out); err != nil {
		return fmt.Errorf("%w: %v", service.ErrParamInvalid, err)
	}
	return nil
}
