// Package store provides the object storage gateways harvested documents are
// written to.
package store

import "context"

// Gateway is the storage capability the harvester depends on.
type Gateway interface {
	// BucketExists reports whether bucket exists and is accessible. A bucket
	// that is missing or forbidden reports false with a nil error; other
	// failures are returned.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// CreateBucket makes sure bucket exists in region. It succeeds without
	// creating anything when the bucket already exists and is accessible.
	CreateBucket(ctx context.Context, bucket, region string) error

	// PutObject writes body under key, replacing any existing object.
	PutObject(ctx context.Context, bucket, key string, body []byte) error
}

// Verify interface compliance at compile time.
var (
	_ Gateway = (*S3)(nil)
	_ Gateway = (*Dir)(nil)
	_ Gateway = (*Memory)(nil)
)
