package mongo

import (
	"time"
)

// Message MongoDB 聊天消息模型
type Message struct {
	ID         string    `bson:"_id,omitempty"`
	SenderID   uint64    `bson:"sender_id"`
	SenderName string    `bson:"sender_name"`
	SenderRole string    `bson:"sender_role"` // member / staff / admin
	ReceiverID uint64    `bson:"receiver_id"`
	Message    string    `bson:"message"`
	FileURL    string    `bson:"file_url,omitempty"`
	Timestamp  time.Time `bson:"timestamp"`
}
