package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wealthwise/internal/storage"
)

const defaultPrefix = "wealthwise:ledger:"

var (
	_ storage.BlobStore = (*Store)(nil)
	_ storage.Pinger    = (*Store)(nil)
)

// Store keeps each ledger blob in a Redis string. Entries expire after ttl
// of inactivity, the server-side counterpart of a cookie's max age: both Put
// and Get reset the expiry.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New wraps a client. A zero ttl stores keys without expiry.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, prefix: defaultPrefix, ttl: ttl}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return New(client, ttl), nil
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.client.GetEx(ctx, s.key(key), s.ttl)
	} else {
		cmd = s.client.Get(ctx, s.key(key))
	}
	v, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
