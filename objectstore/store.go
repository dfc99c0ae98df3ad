package objectstore

import "context"

// Store defines byte level object persistence addressed by bucket and key.
// Implementations must be safe for concurrent use.
type Store interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte) error
}
