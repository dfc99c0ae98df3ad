// Package local provides an objectstore.Store on the local filesystem. Each
// bucket maps to a directory below a root, each key to a file path below that
// directory. Useful for offline runs and processing-job style mounts where
// input and output objects are exposed as plain files.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/s3agent/objectstore"
)

// ErrInvalidPath is returned when a bucket would escape the root or a key
// would escape its bucket.
var ErrInvalidPath = errors.New("local: path escapes store root")

// Store implements objectstore.Store using the local filesystem.
type Store struct {
	root string
}

// NewStore creates the root directory if needed and returns a Store.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("local: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("local: create root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Fetch reads root/bucket/key.
func (s *Store) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("local: read %s/%s: %w", bucket, key, classify(err))
	}
	return data, nil
}

// Put writes root/bucket/key, creating parent directories.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("local: create directory: %w", classify(err))
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("local: write %s/%s: %w", bucket, key, classify(err))
	}
	return nil
}

func (s *Store) resolve(bucket, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("%w: empty bucket or key", ErrInvalidPath)
	}
	dir := filepath.Join(s.root, bucket)
	if rel, err := filepath.Rel(s.root, dir); err != nil || !below(rel) {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidPath, bucket, key)
	}
	full := filepath.Join(dir, filepath.FromSlash(key))
	if rel, err := filepath.Rel(dir, full); err != nil || !below(rel) {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidPath, bucket, key)
	}
	return full, nil
}

// below reports whether rel names a path strictly below its base.
func below(rel string) bool {
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errors.Join(objectstore.ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return errors.Join(objectstore.ErrAccessDenied, err)
	default:
		return err
	}
}

// compile-time check
var _ objectstore.Store = (*Store)(nil)
