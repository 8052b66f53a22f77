package chat

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"
)

// Sender 出站通道
type Sender interface {
	Send(msg Message) error
	State() ConnState
}

// AttachmentUploader 附件上传
type AttachmentUploader interface {
	Upload(ctx context.Context, file *Attachment) (string, error)
}

// Timeline 本地可见消息列表
type Timeline interface {
	Append(msg Message)
}

// WarnFunc 非致命问题的提示出口
type WarnFunc func(err error)

// Composer 组装出站消息，发送成功后乐观追加到本地
type Composer struct {
	me       SessionIdentity
	sender   Sender
	uploader AttachmentUploader
	timeline Timeline
	warn     WarnFunc
	now      func() time.Time
}

func NewComposer(me SessionIdentity, sender Sender, uploader AttachmentUploader, timeline Timeline, warn WarnFunc) *Composer {
	if warn == nil {
		warn = logWarn
	}
	return &Composer{
		me:       me,
		sender:   sender,
		uploader: uploader,
		timeline: timeline,
		warn:     warn,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Compose 校验、上传附件、发送并乐观追加
func (c *Composer) Compose(ctx context.Context, text string, file *Attachment, receiver *Participant) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && file == nil {
		return Message{}, ErrComposeIncomplete
	}
	if receiver == nil {
		return Message{}, ErrComposeNoReceiver
	}
	if c.sender == nil || c.sender.State() != StateJoined {
		return Message{}, ErrComposeNotConnected
	}

	var fileURL string
	if file != nil {
		u, err := c.upload(ctx, file)
		if err != nil {
			if text == "" {
				return Message{}, fmt.Errorf("%w: %w", ErrComposeIncomplete, err)
			}
			// 附件失败时仍发送文字
			c.warn(err)
		}
		fileURL = u
	}

	msg := Message{
		SenderID:      c.me.ID,
		SenderName:    c.me.DisplayName,
		SenderRole:    c.me.Role,
		ReceiverID:    receiver.Ref.ID,
		Text:          text,
		AttachmentURL: fileURL,
		Timestamp:     c.now(),
	}

	if err := c.sender.Send(msg); err != nil {
		return Message{}, err
	}
	if c.timeline != nil {
		c.timeline.Append(msg)
	}
	return msg, nil
}

func (c *Composer) upload(ctx context.Context, file *Attachment) (string, error) {
	if c.uploader == nil {
		return "", fmt.Errorf("%w: no uploader", ErrUploadTransportFailed)
	}
	u, err := c.uploader.Upload(ctx, file)
	if err != nil {
		if !errors.Is(err, ErrUploadTooLarge) && !errors.Is(err, ErrUploadTransportFailed) {
			err = fmt.Errorf("%w: %v", ErrUploadTransportFailed, err)
		}
		return "", err
	}
	return u, nil
}

func logWarn(err error) {
	log.Warn("chat warning", "err", err)
}
