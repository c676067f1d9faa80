package storage

import "context"

// Store is a flat key-value store holding opaque blobs.
type Store interface {
	// Get returns the value under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Put overwrites the value under key.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
