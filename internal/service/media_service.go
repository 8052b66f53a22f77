package service

import (
	"context"
	"fmt"
	"io"
	log "log/slog"
	"time"

	"GymChat/internal/api/config"
	"GymChat/internal/api/dto"
	"GymChat/internal/pkg/consts"
	"GymChat/internal/pkg/minio"
	"GymChat/internal/pkg/redis"
	"GymChat/internal/pkg/util"

	"github.com/goccy/go-json"
)

// ObjectStore 附件对象存储
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType, originalName string) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
	PublicURL(objectName string) string
	ObjectName(url string) (string, bool)
}

// PendingStore 未被引用附件的登记表
type PendingStore interface {
	Put(ctx context.Context, objectKey string, meta string) error
	Remove(ctx context.Context, objectKey string) (bool, error)
	All(ctx context.Context) (map[string]string, error)
}

type MediaService interface {
	Upload(ctx context.Context, filename string, reader io.ReadSeeker, size int64) (string, error)
	// Claim 消息引用了附件，从待清理名单中移除
	Claim(ctx context.Context, fileURL string)
	// CleanupExpired 删除超过 ttl 仍未被引用的附件
	CleanupExpired(ctx context.Context, ttl time.Duration) (int, error)
}

type mediaServiceImpl struct {
	store   ObjectStore
	pending PendingStore
	maxSize int64
	now     func() time.Time
}

func NewMediaService(cfg config.UploadConfig, store ObjectStore, pending PendingStore) MediaService {
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &mediaServiceImpl{store: store, pending: pending, maxSize: maxSize, now: time.Now}
}

func (s *mediaServiceImpl) Upload(ctx context.Context, filename string, reader io.ReadSeeker, size int64) (string, error) {
	if size > s.maxSize {
		return "", ErrFileTooLarge
	}
	if size <= 0 {
		return "", ErrParamInvalid
	}

	contentType, err := util.GetSafeContentType(reader)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileNotSupported, err)
	}

	objectName := util.ObjectName(consts.UploadObjectPrefix, filename, contentType, s.now())
	key, err := s.store.UploadFile(ctx, objectName, reader, size, contentType, filename)
	if err != nil {
		log.ErrorContext(ctx, "MinIO upload failed", "err", err)
		return "", UnExpectedError
	}

	meta, _ := json.Marshal(dto.PendingUploadMeta{
		ObjectKey: key,
		MimeType:  contentType,
		Size:      size,
		CreatedAt: s.now().Unix(),
	})
	if err = s.pending.Put(ctx, key, string(meta)); err != nil {
		// 登记失败只影响清理
		log.WarnContext(ctx, "failed to record pending upload", "key", key, "err", err)
	}

	log.InfoContext(ctx, "chat attachment uploaded", "key", key, "type", contentType, "size", size)
	return s.store.PublicURL(key), nil
}

func (s *mediaServiceImpl) Claim(ctx context.Context, fileURL string) {
	if fileURL == "" {
		return
	}
	key, ok := s.store.ObjectName(fileURL)
	if !ok {
		return
	}
	if _, err := s.pending.Remove(ctx, key); err != nil {
		log.WarnContext(ctx, "failed to claim upload", "key", key, "err", err)
	}
}

func (s *mediaServiceImpl) CleanupExpired(ctx context.Context, ttl time.Duration) (int, error) {
	all, err := s.pending.All(ctx)
	if err != nil {
		return 0, err
	}

	deadline := s.now().Add(-ttl).Unix()
	count := 0
	for key, val := range all {
		var meta dto.PendingUploadMeta
		if err := json.Unmarshal([]byte(val), &meta); err != nil {
			log.WarnContext(ctx, "invalid pending upload meta", "key", key)
			continue
		}
		if meta.CreatedAt > deadline {
			continue
		}

		// 先删登记，防止与并发的 Claim 竞争后误删已引用的文件
		removed, err := s.pending.Remove(ctx, key)
		if err != nil {
			log.ErrorContext(ctx, "failed to remove pending upload", "key", key, "err", err)
			continue
		}
		if !removed {
			continue
		}
		if err = s.store.DeleteFile(ctx, key); err != nil {
			log.ErrorContext(ctx, "failed to delete expired upload", "key", key, "err", err)
			continue
		}
		count++
		log.InfoContext(ctx, "cleanup expired upload", "key", key, "mime", meta.MimeType)
	}
	return count, nil
}

// MinioStore 基于全局 minio 客户端
type MinioStore struct{}

func (MinioStore) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType, originalName string) (string, error) {
	return minio.UploadFile(ctx, objectName, reader, size, contentType, originalName)
}

func (MinioStore) DeleteFile(ctx context.Context, objectName string) error {
	return minio.DeleteFile(ctx, objectName)
}

func (MinioStore) PublicURL(objectName string) string {
	return minio.GetPublicURL(objectName)
}

func (MinioStore) ObjectName(url string) (string, bool) {
	return minio.ObjectFromPublicURL(url)
}

// RedisPendingStore 登记在 chat:upload:pending 哈希中
type RedisPendingStore struct{}

func (RedisPendingStore) Put(ctx context.Context, objectKey string, meta string) error {
	return redis.HSet(ctx, consts.UploadPendingKey, objectKey, meta)
}

func (RedisPendingStore) Remove(ctx context.Context, objectKey string) (bool, error) {
	n, err := redis.HDel(ctx, consts.UploadPendingKey, objectKey)
	return n > 0, err
}

func (RedisPendingStore) All(ctx context.Context) (map[string]string, error) {
	return redis.HGetAll(ctx, consts.UploadPendingKey)
}
