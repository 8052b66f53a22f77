package chat

import (
	"fmt"
	"sort"
	"time"

	"GymChat/internal/api/dto"
)

// Message 一条私信，创建后不可变
type Message struct {
	SenderID      uint64
	SenderName    string
	SenderRole    Role
	ReceiverID    uint64
	Text          string
	AttachmentURL string
	Timestamp     time.Time
}

// Valid 文本与附件至少有其一
func (m Message) Valid() bool {
	return m.Text != "" || m.AttachmentURL != ""
}

func (m Message) toDTO() *dto.MessageDTO {
	return &dto.MessageDTO{
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		SenderRole: m.SenderRole.String(),
		ReceiverID: m.ReceiverID,
		Message:    m.Text,
		FileURL:    m.AttachmentURL,
		Timestamp:  m.Timestamp,
	}
}

func messageFromDTO(d *dto.MessageDTO) (Message, error) {
	role, err := ParseRole(d.SenderRole)
	if err != nil {
		return Message{}, err
	}
	m := Message{
		SenderID:      d.SenderID,
		SenderName:    d.SenderName,
		SenderRole:    role,
		ReceiverID:    d.ReceiverID,
		Text:          d.Message,
		AttachmentURL: d.FileURL,
		Timestamp:     d.Timestamp,
	}
	if !m.Valid() {
		return Message{}, fmt.Errorf("message from %s #%d has neither text nor attachment", role, d.SenderID)
	}
	return m, nil
}

func sortByTimestamp(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
