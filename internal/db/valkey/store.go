package valkey

import (
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/stranalyzer/internal/db"
	"github.com/kailas-cloud/stranalyzer/internal/db/redis"
)

var _ db.Store = (*Store)(nil)

// Config holds connection parameters. Valkey speaks the same protocol as Redis.
type Config = redis.Config

// Store implements db.Store for Valkey with the valkey-search module.
// Commands are shared with the Redis store; listing without a filter is emulated
// because valkey-search rejects a bare "*" query.
type Store struct {
	*redis.Store
}

// NewStore creates a Valkey store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Store: redis.NewStoreFromClient(client)}, nil
}

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{Store: redis.NewStoreFromClient(c)}
}
