package job

import (
	"context"
	log "log/slog"
	"time"

	"GymChat/internal/pkg/consts"
	"GymChat/internal/pkg/logger"
	"GymChat/internal/pkg/redis"
	"GymChat/internal/service"

	"github.com/google/uuid"
)

const lockTTL = 10 * time.Minute

// Locker 多实例时只允许一个实例执行清理
type Locker interface {
	TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, token string) (bool, error)
}

type AttachmentCleanupJob struct {
	media  service.MediaService
	locker Locker
	ttl    time.Duration
}

func NewAttachmentCleanupJob(media service.MediaService, locker Locker, pendingTTLHours int) *AttachmentCleanupJob {
	ttl := time.Duration(pendingTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AttachmentCleanupJob{media: media, locker: locker, ttl: ttl}
}

func (s *AttachmentCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(logger.WithTrace(context.Background()), lockTTL)
	defer cancel()

	token := uuid.NewString()
	ok, err := s.locker.TryLock(ctx, consts.UploadCleanupLock, token, lockTTL)
	if err != nil {
		log.ErrorContext(ctx, "failed to acquire cleanup lock", "err", err)
		return
	}
	if !ok {
		log.InfoContext(ctx, "attachment cleanup running elsewhere, skip")
		return
	}
	defer func() {
		released, err := s.locker.Unlock(context.WithoutCancel(ctx), consts.UploadCleanupLock, token)
		if err != nil || !released {
			log.WarnContext(ctx, "cleanup lock not released", "released", released, "err", err)
		}
	}()

	log.InfoContext(ctx, "start attachment cleanup job")
	count, err := s.media.CleanupExpired(ctx, s.ttl)
	if err != nil {
		log.ErrorContext(ctx, "attachment cleanup failed", "err", err)
		return
	}
	if count > 0 {
		log.InfoContext(ctx, "attachment cleanup job finished", "cleaned_count", count)
	}
}

// RedisLocker 基于 SETNX 的分布式锁
type RedisLocker struct{}

func (RedisLocker) TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return redis.TryLock(ctx, key, token, ttl)
}

func (RedisLocker) Unlock(ctx context.Context, key, token string) (bool, error) {
	return redis.Unlock(ctx, key, token)
}
