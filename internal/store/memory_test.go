package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Put(ctx, "k1", []byte("hello"), 0)
	require.NoError(t, err)

	value, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), value)

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "absent key should not be an error")
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.Now = func() time.Time { return now }

	err := s.Put(ctx, "k1", []byte("v"), time.Minute)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok, "entry should survive before TTL elapses")

	now = now.Add(time.Minute + time.Millisecond)
	_, ok, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after TTL elapses")
}

func TestMemoryStore_PutResetsTTL(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.Now = func() time.Time { return now }

	require.NoError(t, s.Put(ctx, "k1", []byte("v1"), time.Minute))

	// Rewrite just before expiry. The TTL restarts, matching Redis SET.
	now = now.Add(59 * time.Second)
	require.NoError(t, s.Put(ctx, "k1", []byte("v2"), time.Minute))

	now = now.Add(59 * time.Second)
	value, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok, "rewrite should have reset the TTL")
	assert.Equal(t, []byte("v2"), value)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", []byte("v"), 0))
	require.NoError(t, s.Delete(ctx, "k1"))

	_, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is fine.
	require.NoError(t, s.Delete(ctx, "never-existed"))
}
