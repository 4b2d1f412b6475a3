package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"bookshelf-backend/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// ObjectStore là phần của MinIO mà cover mirroring cần
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
	HealthCheck(ctx context.Context) error
}

// MinIOStorage handles object uploads to a single bucket
type MinIOStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIOStorage khởi tạo client và tạo bucket nếu chưa có
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(initCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(initCtx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("[MINIO] Bucket created")
	}

	return &MinIOStorage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: client.EndpointURL().String(),
	}, nil
}

// Upload trả về public URL của object: {endpoint}/{bucket}/{key}
func (s *MinIOStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return ObjectURL(s.baseURL, s.bucket, key), nil
}

// DeleteByPrefix xóa tất cả object dưới prefix (vd: covers/{book_id}/)
func (s *MinIOStorage) DeleteByPrefix(ctx context.Context, prefix string) error {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for rmErr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		if rmErr.Err != nil {
			return fmt.Errorf("failed to remove %s: %w", rmErr.ObjectName, rmErr.Err)
		}
	}
	return nil
}

func (s *MinIOStorage) HealthCheck(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio unreachable: %w", err)
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", s.bucket)
	}
	return nil
}

// ObjectURL joins base, bucket and key with path escaping on the key.
func ObjectURL(baseURL, bucket, key string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Sprintf("%s/%s/%s", baseURL, bucket, key)
	}
	return u.JoinPath(bucket, key).String()
}
