package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthwise/internal/config"
	"wealthwise/internal/events"
	"wealthwise/internal/events/kafka"
	"wealthwise/internal/storage"
	"wealthwise/internal/storage/memory"
)

func TestFromAppConfig(t *testing.T) {
	app := config.Defaults()
	app.DataBackend = config.BackendRedis
	app.RedisAddr = "redis:6379"
	app.CookieMaxAge = time.Hour

	cfg, err := FromAppConfig(&app)
	require.NoError(t, err)
	assert.Equal(t, RedisBackend, cfg.Type)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, time.Hour, cfg.SessionTTL)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)

	app.DataBackend = "sheets"
	_, err = FromAppConfig(&app)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"cookie", Config{Type: CookieBackend}, false},
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without dsn", Config{Type: PostgresBackend}, true},
		{"redis without addr", Config{Type: RedisBackend}, true},
		{"cache without ttl", Config{Type: MemoryBackend, CacheSize: 10}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestFactory_Cookie(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: CookieBackend})
	require.NoError(t, err)
	assert.True(t, res.Cookie())
	assert.Nil(t, res.Store)
	assert.NoError(t, res.Close())
}

func TestFactory_Memory(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.False(t, res.Cookie())
	assert.IsType(t, &memory.Store{}, res.Store)
}

func TestFactory_SQLiteWithCache(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db"),
		CacheSize:    10,
		CacheTTL:     time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close() })

	require.IsType(t, &storage.Cached{}, res.Store)
	require.NoError(t, res.Store.Put(ctx, "k", []byte("[]")))
	got, err := res.Store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	p, ok := res.Store.(storage.Pinger)
	require.True(t, ok)
	assert.NoError(t, p.Ping(ctx))
}

func TestNewPublisher_DefaultsToNop(t *testing.T) {
	app := config.Defaults()
	p := NewPublisher(context.Background(), &app, nil)
	assert.IsType(t, events.Nop{}, p)
	assert.Equal(t, config.BrokerNone, Describe(p))

	app.EventsBroker = config.BrokerKafka
	p = NewPublisher(context.Background(), &app, nil)
	assert.Equal(t, config.BrokerKafka, Describe(p))
	assert.NoError(t, p.Close())
}

func TestNewConsumer(t *testing.T) {
	app := config.Defaults()
	_, err := NewConsumer(context.Background(), &app, "audit", nil)
	assert.Error(t, err, "no broker configured")

	app.EventsBroker = config.BrokerKafka
	c, err := NewConsumer(context.Background(), &app, "audit", nil)
	require.NoError(t, err)
	assert.IsType(t, &kafka.Subscriber{}, c)
	assert.NoError(t, c.Close())
}
