package storage

import "context"

// ObjectStorage captures the two transfer operations an invocation needs.
// Both are single-shot: a failure is terminal for the invocation, there is no
// retry at this layer.
type ObjectStorage interface {
	// Download fetches bucket/key into a local scratch file at destPath.
	Download(ctx context.Context, bucket, key, destPath string) error

	// Upload stores the local file at srcPath under bucket/key.
	Upload(ctx context.Context, srcPath, bucket, key string) error
}
