package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

var errNotInitialized = errors.New("minio client is not initialized")

// UploadFile 上传附件，originalName 写入对象元数据便于排查
func UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType, originalName string) (string, error) {
	if Client == nil {
		return "", errNotInitialized
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	if originalName != "" {
		opts.UserMetadata = map[string]string{"original-name": url.PathEscape(originalName)}
	}
	info, err := Client.PutObject(ctx, BucketName, objectName, reader, size, opts)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return info.Key, nil
}

// DeleteFile 删除附件对象
func DeleteFile(ctx context.Context, objectName string) error {
	if Client == nil {
		return errNotInitialized
	}
	if err := Client.RemoveObject(ctx, BucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetPublicURL 附件的对外访问链接
func GetPublicURL(objectName string) string {
	return publicBase + objectName
}

// ObjectFromPublicURL 只识别本桶对外链接
func ObjectFromPublicURL(raw string) (string, bool) {
	return ObjectFromURL(raw, publicBase)
}

// ObjectFromURL 按链接前缀 base 反解对象名，主机与桶都必须一致
func ObjectFromURL(raw, base string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	b, err := url.Parse(base)
	if err != nil || !strings.EqualFold(u.Host, b.Host) {
		return "", false
	}
	name, ok := strings.CutPrefix(u.Path, b.Path)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
