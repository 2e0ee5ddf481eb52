package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir is a Gateway that keeps each bucket as a sub-directory of Root. It is
// meant for local dry runs of a harvest.
type Dir struct {
	Root string
}

// NewDir returns a gateway rooted at root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

func (d *Dir) BucketExists(_ context.Context, bucket string) (bool, error) {
	path, err := d.path(bucket, "")
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case errors.Is(err, fs.ErrPermission):
		return false, nil
	case err != nil:
		return false, err
	}
	return info.IsDir(), nil
}

// CreateBucket creates the bucket directory; region is ignored.
func (d *Dir) CreateBucket(ctx context.Context, bucket, _ string) error {
	exists, err := d.BucketExists(ctx, bucket)
	if err != nil || exists {
		return err
	}
	path, err := d.path(bucket, "")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create bucket directory: %w", err)
	}
	return nil
}

func (d *Dir) PutObject(_ context.Context, bucket, key string, body []byte) (err error) {
	path, err := d.path(bucket, key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// path maps bucket and key to a file path, rejecting names that would escape
// the bucket directory.
func (d *Dir) path(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("invalid bucket name %q", bucket)
	}
	if key == "" {
		return filepath.Join(d.Root, bucket), nil
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(d.Root, bucket, key), nil
}
