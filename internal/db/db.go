// Package db defines the storage facade used by the repositories: hashes addressed by
// key, FT secondary indexes over them, and filtered listing through those indexes.
// Drivers live in the redis and valkey subpackages.
package db

import (
	"context"
	"time"
)

// Store is everything a driver provides. Consumers declare the narrow subset they need.
type Store interface {
	Pinger
	Hashes
	Indexes
	Lister

	// WaitForReady blocks until the server answers or timeout elapses.
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Hashes stores flat string maps under keys.
type Hashes interface {
	// HSetNX writes all fields only if key does not exist, atomically.
	// It reports whether the hash was written.
	HSetNX(ctx context.Context, key string, fields map[string]string) (bool, error)
	// HGetAll returns ErrKeyNotFound for a missing key.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HGetAllMulti returns one map per key, nil where the key is missing.
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	// Del reports whether the key existed.
	Del(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Indexes manages FT indexes.
type Indexes interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Lister runs filtered, paginated listings over an FT index.
type Lister interface {
	SearchList(ctx context.Context, q *ListQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, q *ListQuery) (int, error)
}
