package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Publish 向房间频道发布一帧
func Publish(ctx context.Context, channel string, payload []byte) error {
	return Rdb.Publish(ctx, channel, payload).Err()
}

// PSubscribe 按模式订阅所有房间，调用方负责 Close
func PSubscribe(ctx context.Context, patterns ...string) *redis.PubSub {
	return Rdb.PSubscribe(ctx, patterns...)
}
