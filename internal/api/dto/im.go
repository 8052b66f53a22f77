package dto

import (
	"time"

	"github.com/goccy/go-json"
)

// WS 事件名
const (
	EventJoinRoom       = "joinRoom"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventError          = "error"
)

// Event WS 帧外层: {"event": "...", "data": {...}}
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent 序列化 data 并包装为事件帧
func NewEvent(name string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Event{Event: name, Data: raw})
}

// JoinRoomReq 加入房间，按身份而不是连接寻址
type JoinRoomReq struct {
	UserID   uint64 `json:"userId" validate:"required"`
	UserRole string `json:"userRole" validate:"required,chatrole"`
}

// MessageDTO sendMessage / receiveMessage 载荷
type MessageDTO struct {
	SenderID   uint64    `json:"sender_id" validate:"required"`
	SenderName string    `json:"sender_name" validate:"max=128"`
	SenderRole string    `json:"sender_role" validate:"required,chatrole"`
	ReceiverID uint64    `json:"receiver_id" validate:"required"`
	Message    string    `json:"message" validate:"required_without=FileURL,max=4000"`
	FileURL    string    `json:"file_url" validate:"omitempty,http_url"`
	Timestamp  time.Time `json:"timestamp"`
}

// ErrorPayload 中继拒绝某帧时下发
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
