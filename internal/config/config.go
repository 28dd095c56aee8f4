package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/stranalyzer/internal/domain"
)

// Config holds the stranalyzer API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Query    QueryConfig    `yaml:"query"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"` // empty keeps the env preset
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys" validate:"dive,notblank"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver" validate:"oneof=redis valkey"`
	Addrs            []string `yaml:"addrs" validate:"required,dive,hostname_port"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db" validate:"min=0,excluded_unless=Driver redis"` // valkey-search indexes db 0 only
	DialTimeoutSec   int      `yaml:"dial_timeout_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix     string `yaml:"key_prefix"`
	MaxValueBytes int    `yaml:"max_value_bytes"`
}

// QueryConfig holds listing and natural-language query limits.
type QueryConfig struct {
	MaxQueryLength  int `yaml:"max_query_length"`
	DefaultPageSize int `yaml:"default_page_size" validate:"ltefield=MaxPageSize"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// Limits returns the domain limits derived from the configuration.
func (c *Config) Limits() domain.Limits {
	return domain.Limits{
		MaxValueBytes:  c.Storage.MaxValueBytes,
		MaxQueryLength: c.Query.MaxQueryLength,
	}
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands, defaults and validates the YAML file at path.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(raw), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// GetEnv returns $ENV, or "local" when unset.
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills every unset (zero or negative) setting.
func (c *Config) ApplyDefaults() {
	limits := domain.DefaultLimits()

	positive(&c.HTTP.ReadTimeoutSec, 10)
	positive(&c.HTTP.WriteTimeoutSec, 10)
	positive(&c.HTTP.ShutdownSec, 10)
	positive(&c.Database.ReadinessTimeout, 10)
	positive(&c.Storage.MaxValueBytes, limits.MaxValueBytes)
	positive(&c.Query.MaxQueryLength, limits.MaxQueryLength)
	positive(&c.Query.DefaultPageSize, 20)
	positive(&c.Query.MaxPageSize, 100)

	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = domain.DefaultKeyPrefix
	}
}

func positive(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// findConfigPath looks for <env>.yaml under ./config, then under the module root's
// config directory (so tests run from any package find it). It falls back to ./config.
func findConfigPath(env string) string {
	name := env + ".yaml"
	local := filepath.Join("config", name)

	candidates := []string{local}
	if _, file, _, ok := runtime.Caller(0); ok {
		root := filepath.Join(filepath.Dir(file), "..", "..")
		candidates = append(candidates, filepath.Join(root, "config", name))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return local
}

// envRef matches ${NAME} and ${NAME:-fallback}.
var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars substitutes environment references. Bare $NAME is left alone so
// secrets containing '$' survive.
func expandEnvVars(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(m []byte) []byte {
		name, fallback, hasFallback := strings.Cut(string(m[2:len(m)-1]), ":-")
		if v := os.Getenv(name); v != "" || !hasFallback {
			return []byte(v)
		}
		return []byte(fallback)
	})
}
