package minio

import (
	"context"
	"fmt"
	log "log/slog"
	"time"

	"GymChat/internal/api/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// Client 全局 MinIO 客户端实例
	Client *minio.Client
	// BucketName 聊天附件存储桶
	BucketName string
	// publicBase 附件对外链接前缀 scheme://host/bucket/
	publicBase string
)

// Init 服务端走内网地址，对外链接用外网地址；任一缺省时互相兜底
func Init(cfg config.MinIOConfig) error {
	endpoint, useSSL := cfg.InternalEndpoint, cfg.InternalUseSSL
	if endpoint == "" {
		endpoint, useSSL = cfg.ExternalEndpoint, cfg.ExternalUseSSL
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize minio client: %w", err)
	}

	Client = client
	BucketName = cfg.Bucket
	publicBase = PublicBase(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = ensureBucket(ctx); err != nil {
		return err
	}
	log.Info("MinIO initialized", "endpoint", endpoint, "bucket", BucketName, "public_base", publicBase)
	return nil
}

// PublicBase 对外链接前缀
func PublicBase(cfg config.MinIOConfig) string {
	endpoint, useSSL := cfg.ExternalEndpoint, cfg.ExternalUseSSL
	if endpoint == "" {
		endpoint, useSSL = cfg.InternalEndpoint, cfg.InternalUseSSL
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, endpoint, cfg.Bucket)
}

// 附件链接直接给客户端访问，桶需要匿名可读
func ensureBucket(ctx context.Context) error {
	exists, err := Client.BucketExists(ctx, BucketName)
	if err != nil {
		return fmt.Errorf("failed to connect to minio server: %w", err)
	}
	if !exists {
		if err = Client.MakeBucket(ctx, BucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("创建存储桶失败: %w", err)
		}
		log.Info("已创建附件存储桶", "bucket", BucketName)
	}

	if current, err := Client.GetBucketPolicy(ctx, BucketName); err == nil && current != "" {
		return nil
	}
	if err = Client.SetBucketPolicy(ctx, BucketName, readOnlyPolicy(BucketName)); err != nil {
		return fmt.Errorf("设置存储桶策略失败: %w", err)
	}
	log.Info("已设置附件存储桶只读策略", "bucket", BucketName)
	return nil
}

func readOnlyPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
