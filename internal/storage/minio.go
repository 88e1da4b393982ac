package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig encapsulates the connection info for a MinIO (S3-compatible)
// endpoint, the usual local-development stand-in for S3.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MinioClient implements ObjectStorage for MinIO / S3-compatible services.
type MinioClient struct {
	client *minio.Client
}

// NewMinioClient builds a new MinioClient.
func NewMinioClient(cfg MinioConfig) (*MinioClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client init failed: %w", err)
	}

	return &MinioClient{client: client}, nil
}

func (c *MinioClient) Download(ctx context.Context, bucket, key, destPath string) error {
	if err := c.client.FGetObject(ctx, bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("minio download %s/%s failed: %w", bucket, key, err)
	}
	return nil
}

func (c *MinioClient) Upload(ctx context.Context, srcPath, bucket, key string) error {
	if _, err := c.client.FPutObject(ctx, bucket, key, srcPath, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("minio upload %s/%s failed: %w", bucket, key, err)
	}
	return nil
}

var _ ObjectStorage = (*MinioClient)(nil)
