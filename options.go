package stranalyzer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stranalyzer/internal/db"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver           string
	addrs            []string
	username         string
	password         string
	keyPrefix        string
	defaultPageSize  int
	maxPageSize      int
	readinessTimeout time.Duration
	logger           *zap.Logger
	registerer       prometheus.Registerer

	// store bypasses driver selection; used by tests.
	store db.Store
}

// WithRedis connects to Redis Stack (RediSearch) at addr.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithValkey connects to Valkey with the valkey-search module at addr.
func WithValkey(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithUsername sets the ACL user.
func WithUsername(username string) Option {
	return func(c *clientConfig) { c.username = username }
}

// WithKeyPrefix namespaces every key and the search index. Defaults to "stranalyzer:".
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) { c.keyPrefix = prefix }
}

// WithPageSize sets the default and maximum number of entries per List or Query page.
func WithPageSize(defaultSize, maxSize int) Option {
	return func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	}
}

// WithReadinessTimeout bounds how long New waits for the database.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.readinessTimeout = d }
}

// WithLogger logs every client operation: failures at warn, successes at debug.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithRegisterer records per-operation counters and latencies on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *clientConfig) { c.registerer = reg }
}

func withStore(s db.Store) Option {
	return func(c *clientConfig) { c.store = s }
}
