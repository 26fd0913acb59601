package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthwise/internal/storage"
	"wealthwise/internal/storage/storagetest"
)

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.BlobStore { return New() })
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	in := []byte("[1]")
	require.NoError(t, s.Put(ctx, "k", in))
	in[1] = '9'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(got))

	got[1] = '7'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(again))
	assert.Equal(t, 1, s.Len())
}
