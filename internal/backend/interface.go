package backend

import (
	"context"
	"time"

	"wealthwise/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult is what the HTTP layer needs to persist ledgers.
//
// In cookie mode Store is nil: each request carries its own ledger and the
// HTTP layer wraps the request cookies in a BlobStore.
type BackendResult struct {
	Type    BackendType
	Store   storage.BlobStore
	Cleanup CleanupFunc
}

// Cookie reports whether ledgers travel in the browser cookie.
func (r *BackendResult) Cookie() bool {
	return r.Type == CookieBackend
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresDSN  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SessionTTL expires idle server-side ledgers where the backend supports it.
	SessionTTL time.Duration

	// CacheSize of 0 disables the read cache in front of SQL and Redis.
	CacheSize int
	CacheTTL  time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	CookieBackend   BackendType = "cookie"
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	RedisBackend    BackendType = "redis"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case CookieBackend, MemoryBackend, SQLiteBackend, PostgresBackend, RedisBackend:
		return true
	default:
		return false
	}
}
