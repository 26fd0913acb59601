package backend

import (
	"context"
	"fmt"

	"wealthwise/internal/cache"
	"wealthwise/internal/log"
	"wealthwise/internal/storage"
	"wealthwise/internal/storage/memory"
	"wealthwise/internal/storage/redisstore"
	"wealthwise/internal/storage/sqlstore"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CookieBackend:
		f.logger.Info("Ledgers are stored in the browser cookie", log.FieldBackend, config.Type)
		return &BackendResult{Type: CookieBackend}, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend", log.FieldBackend, config.Type)
		return &BackendResult{Type: MemoryBackend, Store: memory.New()}, nil
	case SQLiteBackend:
		repo, err := sqlstore.OpenSQLite(ctx, config.SQLiteDBPath, sqlstore.WithLogger(f.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", log.FieldBackend, config.Type, "db_path", config.SQLiteDBPath)
		return f.withCache(config, repo, repo.Close), nil
	case PostgresBackend:
		repo, err := sqlstore.OpenPostgres(ctx, config.PostgresDSN, sqlstore.WithLogger(f.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres backend: %w", err)
		}
		f.logger.Info("Initialized postgres backend", log.FieldBackend, config.Type)
		return f.withCache(config, repo, repo.Close), nil
	case RedisBackend:
		store, err := redisstore.Dial(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB, config.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis backend: %w", err)
		}
		f.logger.Info("Initialized redis backend", log.FieldBackend, config.Type, "addr", config.RedisAddr)
		return f.withCache(config, store, store.Close), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// withCache fronts store with an LRU cache swept by a cache.Manager.
func (f *DefaultFactory) withCache(config Config, store storage.BlobStore, closeStore CleanupFunc) *BackendResult {
	if config.CacheSize <= 0 {
		return &BackendResult{Type: config.Type, Store: store, Cleanup: closeStore}
	}

	lru := cache.NewLRUCache[[]byte](config.CacheSize, config.CacheTTL)
	manager := cache.NewManager(f.logger.Logger.With(log.FieldComponent, log.ComponentCache))
	manager.Register(lru)
	manager.StartCleanup(config.CacheTTL)

	f.logger.Debug("Enabled ledger cache", "size", config.CacheSize, "ttl", config.CacheTTL)

	return &BackendResult{
		Type:  config.Type,
		Store: storage.NewCached(store, lru),
		Cleanup: func() error {
			manager.Stop()
			return closeStore()
		},
	}
}
