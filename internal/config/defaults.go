package config

const (
	defaultServerPort = 8080

	defaultBreakerMaxFailures = 5
	defaultBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",
		"server.metrics":       true,

		"log.level":  "info",
		"log.format": "text",

		"store.driver":         StoreFile,
		"store.dir":            ".pagecraft/documents",
		"store.encryption_key": "",

		"redis.url":      "redis://localhost:6379/0",
		"redis.prefix":   "pagecraft:doc:",
		"redis.ttl":      "0s",
		"redis.lock":     false,
		"redis.lock_ttl": "30s",

		"postgres.dsn":   "",
		"postgres.table": "pagecraft_documents",

		"publish.endpoint":   "localhost:9000",
		"publish.access_key": "",
		"publish.secret_key": "",
		"publish.bucket":     "",
		"publish.use_ssl":    false,
		"publish.prefix":     "",
		"publish.base_url":   "",

		"breaker.enabled":         false,
		"breaker.max_failures":    defaultBreakerMaxFailures,
		"breaker.timeout":         "30s",
		"breaker.half_open_limit": defaultBreakerHalfOpen,

		"preview.title":     "Preview",
		"preview.id_prefix": "cmp",
	}
}
