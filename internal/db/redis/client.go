package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/stranalyzer/internal/db"
)

var _ db.Store = (*Store)(nil)

// DefaultClientName is sent with CLIENT SETNAME on every connection.
const DefaultClientName = "stranalyzer"

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int

	// ClientName defaults to DefaultClientName.
	ClientName string
	// DialTimeout bounds connection setup; rueidis applies its own default when zero.
	DialTimeout time.Duration
}

// Store talks to Redis 8+ (RediSearch built in) through rueidis.
type Store struct {
	client rueidis.Client
}

// NewStore dials a Redis server.
func NewStore(cfg Config) (*Store, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewStoreFromClient(client), nil
}

// NewClient builds a rueidis client. The Valkey store shares it.
//
// Client-side caching stays off since every read must observe the latest write, and
// RESP2 is forced because reply parsing expects FT.SEARCH's flat array form.
func NewClient(cfg Config) (rueidis.Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}
	name := cfg.ClientName
	if name == "" {
		name = DefaultClientName
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   name,
		Dialer:       net.Dialer{Timeout: cfg.DialTimeout},
		DisableCache: true,
		AlwaysRESP2:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %s: %w", strings.Join(cfg.Addrs, ","), err)
	}
	return client, nil
}

// NewStoreFromClient wraps an existing client. Close closes it.
func NewStoreFromClient(c rueidis.Client) *Store {
	return &Store{client: c}
}

// Ping sends PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *Store) Close() {
	s.client.Close()
}

const (
	readyMinBackoff = 50 * time.Millisecond
	readyMaxBackoff = time.Second
)

// WaitForReady pings with doubling backoff until the server answers or timeout elapses.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := readyMinBackoff
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("database not ready after %s (last error: %v): %w", timeout, err, ctx.Err())
		case <-t.C:
		}
		backoff = min(backoff*2, readyMaxBackoff)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// IsRedisErr reports whether err is a server error reply whose text contains substr,
// ignoring case. Transport errors never match.
func IsRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	return ok && strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
