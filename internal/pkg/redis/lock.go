package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// 只有持有者才能释放
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// TryLock 单次 SETNX，拿不到锁立即返回 false
func TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return Rdb.SetNX(ctx, key, token, ttl).Result()
}

// Unlock 返回是否真的释放了锁（锁可能已过期被他人持有）
func Unlock(ctx context.Context, key, token string) (bool, error) {
	n, err := unlockScript.Run(ctx, Rdb, []string{key}, token).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
