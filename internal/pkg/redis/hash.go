package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// HSet 写入哈希字段
func HSet(ctx context.Context, key, field string, value any) error {
	return Rdb.HSet(ctx, key, field, value).Err()
}

// HDel 删除哈希字段，返回实际删除的数量；并发删除时只有一方得到 1
func HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	return Rdb.HDel(ctx, key, fields...).Result()
}

// HGetAll 读取整个哈希，键不存在时返回空 map
func HGetAll(ctx context.Context, key string) (map[string]string, error) {
	value, err := Rdb.HGetAll(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return map[string]string{}, nil
	}
	return value, err
}
