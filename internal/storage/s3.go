package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client implements ObjectStorage on top of the AWS SDK transfer manager,
// streaming files instead of buffering whole objects in memory.
type S3Client struct {
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

// NewS3Client builds an S3Client from a resolved AWS config.
func NewS3Client(cfg aws.Config) *S3Client {
	client := s3.NewFromConfig(cfg)
	return &S3Client{
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
	}
}

func (c *S3Client) Download(ctx context.Context, bucket, key, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed creating %s: %w", destPath, err)
	}
	defer f.Close()

	_, err = c.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 download s3://%s/%s failed: %w", bucket, key, err)
	}
	return nil
}

func (c *S3Client) Upload(ctx context.Context, srcPath, bucket, key string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed opening %s: %w", srcPath, err)
	}
	defer f.Close()

	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("s3 upload s3://%s/%s failed: %w", bucket, key, err)
	}
	return nil
}

var _ ObjectStorage = (*S3Client)(nil)
