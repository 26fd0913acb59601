// Package storagetest holds the behaviour every storage.BlobStore must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthwise/internal/storage"
)

// Run exercises get/put/delete semantics against a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) storage.BlobStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "absent")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		s := newStore(t)
		payload := []byte(`[{"id":1,"amount":5,"description":"x","date":"2024-01-01","type":"income"}]`)
		require.NoError(t, s.Put(ctx, "k", payload))

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("put overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "k", []byte("[1]")))
		require.NoError(t, s.Put(ctx, "k", []byte("[2]")))

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("[2]"), got)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "a", []byte("[1]")))
		require.NoError(t, s.Put(ctx, "b", []byte("[2]")))
		require.NoError(t, s.Delete(ctx, "a"))

		_, err := s.Get(ctx, "a")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		got, err := s.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, []byte("[2]"), got)
	})

	t.Run("delete missing key", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Delete(ctx, "never-written"))
	})
}
