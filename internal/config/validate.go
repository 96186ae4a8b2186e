package config

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.Store.validate(),
		c.Postgres.validate(c.Store.Driver),
		c.Breaker.validate(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}
	switch l.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}
	return errors.Join(errs...)
}

func (s *StoreConfig) validate() error {
	var errs []error
	switch s.Driver {
	case StoreMemory, StoreFile, StoreRedis, StorePostgres:
	default:
		errs = append(errs, fmt.Errorf("store.driver must be one of: memory, file, redis, postgres; got %q", s.Driver))
	}
	if s.Driver == StoreFile && s.Dir == "" {
		errs = append(errs, errors.New("store.dir must not be empty for the file driver"))
	}
	if s.EncryptionKey != "" {
		if _, err := DecodeKey(s.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("store.encryption_key: %w", err))
		}
	}
	for i, k := range s.FallbackKeys {
		if _, err := DecodeKey(k); err != nil {
			errs = append(errs, fmt.Errorf("store.fallback_keys[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (p *PostgresConfig) validate(driver string) error {
	if driver == StorePostgres && p.DSN == "" {
		return errors.New("postgres.dsn must not be empty for the postgres driver")
	}
	return nil
}

func (b *BreakerConfig) validate() error {
	if !b.Enabled {
		return nil
	}
	var errs []error
	if b.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("breaker.max_failures must be >= 1, got %d", b.MaxFailures))
	}
	if b.Timeout <= 0 {
		errs = append(errs, errors.New("breaker.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// DecodeKey parses a hex encoded AES-256 key.
func DecodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("key must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
