package backend

import (
	"errors"
	"fmt"

	"wealthwise/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		PostgresDSN:  appConfig.PostgresDSN,

		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,

		SessionTTL: appConfig.CookieMaxAge,
		CacheSize:  appConfig.CacheSize,
		CacheTTL:   appConfig.CacheTTL,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.PostgresDSN == "" {
			return errors.New("postgres DSN is required for postgres backend")
		}
	case RedisBackend:
		if c.RedisAddr == "" {
			return errors.New("redis address is required for redis backend")
		}
	case CookieBackend, MemoryBackend:
	}

	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive when cache size is %d", c.CacheSize)
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{CookieBackend, MemoryBackend, SQLiteBackend, PostgresBackend, RedisBackend}
}
