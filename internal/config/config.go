// Package config loads pagecraft settings: built-in defaults, then an
// optional YAML file, then PAGECRAFT_* environment variables.
package config

import "time"

// Config holds all configuration for the service and CLI.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
	Store    StoreConfig    `koanf:"store"`
	Redis    RedisConfig    `koanf:"redis"`
	Postgres PostgresConfig `koanf:"postgres"`
	Publish  PublishConfig  `koanf:"publish"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Preview  PreviewConfig  `koanf:"preview"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	// Metrics exposes /metrics when true.
	Metrics bool `koanf:"metrics"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// StoreConfig selects the document store.
type StoreConfig struct {
	Driver string `koanf:"driver"`
	// Dir is the file driver's base directory.
	Dir string `koanf:"dir"`
	// EncryptionKey is a hex encoded 32 byte AES key. Empty disables encryption.
	EncryptionKey string `koanf:"encryption_key"`
	// FallbackKeys are older hex keys still accepted for decryption.
	FallbackKeys []string `koanf:"fallback_keys"`
}

// RedisConfig holds the redis store and lock settings.
type RedisConfig struct {
	URL    string        `koanf:"url"`
	Prefix string        `koanf:"prefix"`
	TTL    time.Duration `koanf:"ttl"`
	// Lock enables the distributed document lock.
	Lock    bool          `koanf:"lock"`
	LockTTL time.Duration `koanf:"lock_ttl"`
}

// PostgresConfig holds the postgres store settings.
type PostgresConfig struct {
	DSN   string `koanf:"dsn"`
	Table string `koanf:"table"`
}

// PublishConfig holds S3-compatible publishing settings. Publishing is
// enabled when Bucket is set.
type PublishConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	UseSSL    bool   `koanf:"use_ssl"`
	Prefix    string `koanf:"prefix"`
	BaseURL   string `koanf:"base_url"`
}

// Enabled reports whether publishing is configured.
func (p PublishConfig) Enabled() bool { return p.Bucket != "" }

// BreakerConfig holds circuit breaker settings for the document store.
type BreakerConfig struct {
	Enabled       bool          `koanf:"enabled"`
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// PreviewConfig holds export and import defaults.
type PreviewConfig struct {
	Title    string `koanf:"title"`
	IDPrefix string `koanf:"id_prefix"`
}
