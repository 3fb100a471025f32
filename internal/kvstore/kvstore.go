// Package kvstore provides the local key-value store: a persistent mapping
// from namespaced string keys to JSON blobs, durable across restarts. The
// SQLite implementation backs normal operation; the in-memory one backs
// tests and throwaway guest sessions.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errors.New("key not found")

// Store is a persistent string-key → JSON-blob mapping.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// List returns all entries whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)

	Close() error
}
