package service

import (
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"strings"

	"GymChat/internal/pkg/consts"
	"GymChat/internal/pkg/redis"
)

// DeliverFunc 把一帧投递给本实例内 roomID 房间的全部连接
type DeliverFunc func(roomID uint64, payload []byte)

// Broker 房间广播通道，多实例部署时经 redis 转发
type Broker interface {
	Publish(ctx context.Context, roomID uint64, payload []byte) error
	// Run 阻塞直到 ctx 结束
	Run(ctx context.Context, deliver DeliverFunc) error
}

type roomFrame struct {
	roomID  uint64
	payload []byte
}

// LocalBroker 单实例进程内广播
type LocalBroker struct {
	frames chan roomFrame
}

func NewLocalBroker(buffer int) *LocalBroker {
	if buffer <= 0 {
		buffer = 256
	}
	return &LocalBroker{frames: make(chan roomFrame, buffer)}
}

func (b *LocalBroker) Publish(ctx context.Context, roomID uint64, payload []byte) error {
	select {
	case b.frames <- roomFrame{roomID: roomID, payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *LocalBroker) Run(ctx context.Context, deliver DeliverFunc) error {
	for {
		select {
		case f := <-b.frames:
			deliver(f.roomID, f.payload)
		case <-ctx.Done():
			return nil
		}
	}
}

// RedisBroker 每个房间一个频道 chat:room:<id>
type RedisBroker struct{}

func NewRedisBroker() *RedisBroker {
	return &RedisBroker{}
}

func (b *RedisBroker) Publish(ctx context.Context, roomID uint64, payload []byte) error {
	return redis.Publish(ctx, RoomChannel(roomID), payload)
}

func (b *RedisBroker) Run(ctx context.Context, deliver DeliverFunc) error {
	pubsub := redis.PSubscribe(ctx, consts.ChatRoomPattern)
	defer func() {
		_ = pubsub.Close()
	}()

	// 确认订阅成功再开始投递
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", consts.ChatRoomPattern, err)
	}
	log.Info("Redis room broker subscribed", "pattern", consts.ChatRoomPattern)

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			roomID, err := ParseRoomChannel(msg.Channel)
			if err != nil {
				log.Warn("ignore frame on unexpected channel", "channel", msg.Channel)
				continue
			}
			deliver(roomID, []byte(msg.Payload))
		case <-ctx.Done():
			return nil
		}
	}
}

func RoomChannel(roomID uint64) string {
	return consts.ChatRoomKey + strconv.FormatUint(roomID, 10)
}

func ParseRoomChannel(channel string) (uint64, error) {
	id, ok := strings.CutPrefix(channel, consts.ChatRoomKey)
	if !ok {
		return 0, fmt.Errorf("not a room channel: %q", channel)
	}
	return strconv.ParseUint(id, 10, 64)
}
