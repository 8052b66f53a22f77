package chat

import (
	"context"
	"fmt"
	log "log/slog"
	"net/url"
	"sync"
	"time"

	"GymChat/internal/api/dto"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// ConnState Disconnected -> Connecting -> Joined -> Disconnected
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateJoined
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	default:
		return "disconnected"
	}
}

// Connection 每个视图独占一条到中继的长连接
type Connection struct {
	url    string
	token  string
	dialer *websocket.Dialer

	mu    sync.Mutex
	state ConnState
	conn  *websocket.Conn
	me    *SessionIdentity
	done  chan struct{}
	// 每次 Open 与 Close 都会递增，拨号期间被 Close 的尝试据此作废
	attempt uint64

	// gorilla 只允许一个并发写者
	writeMu sync.Mutex

	handlerMu sync.RWMutex
	onReceive func(Message)
	onError   func(error)
}

func NewConnection(wsURL, token string) *Connection {
	return &Connection{
		url:    wsURL,
		token:  token,
		dialer: websocket.DefaultDialer,
	}
}

// State 当前状态
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnReceive 注册唯一的入站处理器，重复注册会替换旧的
func (c *Connection) OnReceive(h func(Message)) {
	c.handlerMu.Lock()
	c.onReceive = h
	c.handlerMu.Unlock()
}

// OnError 注册致命错误回调，通道不会自动重连
func (c *Connection) OnError(h func(error)) {
	c.handlerMu.Lock()
	c.onError = h
	c.handlerMu.Unlock()
}

// Open 建立连接并以 me 的身份加入房间
func (c *Connection) Open(ctx context.Context, me SessionIdentity) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: channel already %s", ErrChannelConnectFailed, state)
	}
	c.state = StateConnecting
	c.attempt++
	attempt := c.attempt
	c.mu.Unlock()

	target, err := c.dialURL()
	if err != nil {
		c.reset(attempt)
		return fmt.Errorf("%w: %v", ErrChannelConnectFailed, err)
	}

	conn, _, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		c.reset(attempt)
		return fmt.Errorf("%w: %v", ErrChannelConnectFailed, err)
	}

	if err = c.writeEvent(conn, dto.EventJoinRoom, joinRequest(me)); err != nil {
		_ = conn.Close()
		c.reset(attempt)
		return fmt.Errorf("%w: joinRoom: %v", ErrChannelConnectFailed, err)
	}

	done := make(chan struct{})
	identity := me
	c.mu.Lock()
	if c.attempt != attempt || c.state != StateConnecting {
		c.mu.Unlock()
		_ = conn.Close()
		log.Info("chat channel closed while connecting", "userID", me.ID)
		return fmt.Errorf("%w: closed while connecting", ErrChannelConnectFailed)
	}
	c.conn = conn
	c.me = &identity
	c.done = done
	c.state = StateJoined
	c.mu.Unlock()

	log.Info("chat channel joined", "userID", me.ID, "role", me.Role.String())
	go c.readLoop(conn, done)
	return nil
}

// Join 幂等：同一身份重复加入不会重复发送 joinRoom
func (c *Connection) Join(me SessionIdentity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateJoined || c.conn == nil {
		return fmt.Errorf("%w: channel %s", ErrChannelSendFailed, c.state)
	}
	if c.me != nil && *c.me == me {
		return nil
	}
	if err := c.writeEvent(c.conn, dto.EventJoinRoom, joinRequest(me)); err != nil {
		return fmt.Errorf("%w: joinRoom: %v", ErrChannelSendFailed, err)
	}
	identity := me
	c.me = &identity
	return nil
}

// Send 发出 sendMessage 后立即返回，不等待任何确认
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	conn, state := c.conn, c.state
	c.mu.Unlock()

	if state != StateJoined || conn == nil {
		return fmt.Errorf("%w: channel %s", ErrComposeNotConnected, state)
	}
	if err := c.writeEvent(conn, dto.EventSendMessage, msg.toDTO()); err != nil {
		return fmt.Errorf("%w: %v", ErrChannelSendFailed, err)
	}
	return nil
}

// Close 主动断开，可重复调用
func (c *Connection) Close() error {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.conn = nil
	c.me = nil
	c.done = nil
	c.state = StateDisconnected
	c.attempt++
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := conn.Close()
	<-done
	return err
}

func (c *Connection) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.fail(conn, err)
			return
		}

		var evt dto.Event
		if err = json.Unmarshal(data, &evt); err != nil {
			log.Warn("drop undecodable frame", "err", err)
			continue
		}

		switch evt.Event {
		case dto.EventReceiveMessage:
			var payload dto.MessageDTO
			if err = json.Unmarshal(evt.Data, &payload); err != nil {
				log.Warn("drop malformed receiveMessage", "err", err)
				continue
			}
			msg, err := messageFromDTO(&payload)
			if err != nil {
				log.Warn("drop invalid receiveMessage", "err", err)
				continue
			}
			// 每次投递时读取当前处理器
			c.handlerMu.RLock()
			h := c.onReceive
			c.handlerMu.RUnlock()
			if h != nil {
				h(msg)
			}
		case dto.EventError:
			var p dto.ErrorPayload
			_ = json.Unmarshal(evt.Data, &p)
			log.Warn("relay rejected frame", "code", p.Code, "msg", p.Message)
		default:
			log.Debug("ignore relay event", "event", evt.Event)
		}
	}
}

// fail 读循环异常退出；若是 Close 触发的则静默
func (c *Connection) fail(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.me = nil
	c.done = nil
	c.state = StateDisconnected
	c.mu.Unlock()
	_ = conn.Close()

	log.Error("chat channel lost", "err", cause)
	c.handlerMu.RLock()
	h := c.onError
	c.handlerMu.RUnlock()
	if h != nil {
		h(fmt.Errorf("%w: %v", ErrChannelLost, cause))
	}
}

func (c *Connection) writeEvent(conn *websocket.Conn, name string, payload any) error {
	data, err := dto.NewEvent(name, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// reset 拨号失败回到 Disconnected；尝试已被 Close 作废时不动状态
func (c *Connection) reset(attempt uint64) {
	c.mu.Lock()
	if c.attempt == attempt {
		c.state = StateDisconnected
	}
	c.mu.Unlock()
}

func (c *Connection) dialURL() (string, error) {
	if c.token == "" {
		return c.url, nil
	}
	u, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func joinRequest(me SessionIdentity) *dto.JoinRoomReq {
	return &dto.JoinRoomReq{UserID: me.ID, UserRole: me.Role.String()}
}
