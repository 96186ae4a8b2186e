package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/config"
	"github.com/aretw0/pagecraft/pkg/adapters/file"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/adapters/postgres"
	"github.com/aretw0/pagecraft/pkg/adapters/redis"
	"github.com/aretw0/pagecraft/pkg/adapters/s3"
	"github.com/aretw0/pagecraft/pkg/observability"
	"github.com/aretw0/pagecraft/pkg/persistence/middleware"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/session"
	backend "github.com/redis/go-redis/v9"
)

// backendSet is an opened document store plus the resources behind it.
type backendSet struct {
	store   ports.DocumentStore
	locker  ports.DistributedLocker
	closers []func() error
}

func (b *backendSet) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
}

// openBackend opens the configured store driver.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backendSet, error) {
	b := &backendSet{}
	switch cfg.Store.Driver {
	case config.StoreMemory:
		b.store = memory.NewStore()
	case config.StoreFile:
		b.store = file.New(cfg.Store.Dir)
	case config.StoreRedis:
		opts, err := backend.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := backend.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		b.store = redis.NewFromClient(client, redis.WithPrefix(cfg.Redis.Prefix), redis.WithTTL(cfg.Redis.TTL))
		b.closers = append(b.closers, client.Close)
		if cfg.Redis.Lock {
			b.locker = redis.NewLocker(client, cfg.Redis.Prefix+"lock:")
		}
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		store, err := postgres.New(db, postgres.WithTable(cfg.Postgres.Table))
		if err == nil {
			err = store.EnsureSchema(ctx)
		}
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		b.store = store
		b.closers = append(b.closers, db.Close)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	logger.Info("document store opened", "driver", cfg.Store.Driver, "distributed_lock", b.locker != nil)
	return b, nil
}

// storeMiddlewares builds the outermost-first middleware chain for the store:
// metrics, then the circuit breaker, then encryption closest to the backend.
func storeMiddlewares(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if metrics != nil {
		mws = append(mws, metrics.StoreMiddleware())
	}
	if cfg.Breaker.Enabled {
		mws = append(mws, middleware.NewBreakerMiddleware(middleware.BreakerConfig{
			Name:          "document-store-" + cfg.Store.Driver,
			MaxFailures:   cfg.Breaker.MaxFailures,
			Timeout:       cfg.Breaker.Timeout,
			HalfOpenLimit: cfg.Breaker.HalfOpenLimit,
			Logger:        logger,
		}))
	}
	if cfg.Store.EncryptionKey != "" {
		active, err := config.DecodeKey(cfg.Store.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("store.encryption_key: %w", err)
		}
		enc := middleware.EncryptionConfig{ActiveKey: active}
		for i, k := range cfg.Store.FallbackKeys {
			key, err := config.DecodeKey(k)
			if err != nil {
				return nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(enc))
	}
	return mws, nil
}

// newSessions wires a session manager over the configured backend.
func newSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, hooks ...session.CommitFunc) (*session.Manager, func(), error) {
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	mws, err := storeMiddlewares(cfg, metrics, logger)
	if err != nil {
		b.Close()
		return nil, nil, err
	}

	engineOpts := []pagecraft.Option{pagecraft.WithIDPrefix(cfg.Preview.IDPrefix)}
	if metrics != nil {
		engineOpts = append(engineOpts, pagecraft.WithLifecycleHooks(metrics.Hooks()))
	}
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithEngineOptions(engineOpts...),
	}
	if b.locker != nil {
		opts = append(opts, session.WithLocker(b.locker), session.WithLockTTL(cfg.Redis.LockTTL))
	}
	for _, h := range hooks {
		opts = append(opts, session.WithCommitHook(h))
	}
	return session.NewManager(middleware.Chain(b.store, mws...), opts...), b.Close, nil
}

// openPublisher builds the S3 publisher, failing when publishing is not configured.
func openPublisher(cfg config.PublishConfig) (*s3.Publisher, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("publishing is not configured (set publish.bucket)")
	}
	return s3.New(s3.Config{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		UseSSL:    cfg.UseSSL,
		Prefix:    cfg.Prefix,
		BaseURL:   cfg.BaseURL,
	})
}
