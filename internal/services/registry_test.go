package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parsegate/internal/models"
	"parsegate/internal/repositories"
	"parsegate/internal/store"
)

func newTestRegistry(t *testing.T) (*RegistryService, *store.MemoryStore) {
	t.Helper()
	kv := store.NewMemoryStore()
	devices := repositories.NewStoreDeviceRepository(kv)
	return NewRegistryService(devices, "test-master-secret"), kv
}

func TestRegistryService_RegisterAndGet(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	info := models.DeviceInfo{Model: "Pixel 9", OSVersion: "15", AppVersion: "2.1.0", Platform: "android"}
	record, err := registry.Register(ctx, "dev-1", info)
	require.NoError(t, err)
	assert.NotEmpty(t, record.KeySeed, "registration must return the derived secret")
	assert.Equal(t, int64(0), record.RequestCount)

	got, err := registry.Get(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, info, got.DeviceInfo)
	assert.Equal(t, record.KeySeed, got.KeySeed)
}

func TestRegistryService_GetUnregistered(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRegistryService_ReRegisterOverwrites(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	first, err := registry.Register(ctx, "dev-1", models.DeviceInfo{})
	require.NoError(t, err)

	// Derivation is time-dependent, so the same device at a later
	// instant gets a different secret. No conflict is raised.
	registry.now = func() time.Time { return time.Now().Add(time.Second) }
	second, err := registry.Register(ctx, "dev-1", models.DeviceInfo{})
	require.NoError(t, err)

	assert.Equal(t, first.DeviceID, second.DeviceID)
	assert.NotEqual(t, first.KeySeed, second.KeySeed)
}

func TestRegistryService_Touch(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	record, err := registry.Register(ctx, "dev-1", models.DeviceInfo{})
	require.NoError(t, err)

	later := record.LastSeen.Add(3 * time.Second)
	registry.now = func() time.Time { return later }

	require.NoError(t, registry.Touch(ctx, "dev-1"))

	got, err := registry.Get(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.RequestCount, "touch increments by exactly one")
	assert.True(t, got.LastSeen.After(record.LastSeen), "touch advances last_seen")
}

func TestRegistryService_TouchUnregistered(t *testing.T) {
	registry, _ := newTestRegistry(t)

	assert.NoError(t, registry.Touch(context.Background(), "ghost"),
		"touching an unregistered device is a no-op, not an error")
}

func TestRegistryService_Revoke(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := registry.Register(ctx, "dev-1", models.DeviceInfo{})
	require.NoError(t, err)

	require.NoError(t, registry.Revoke(ctx, "dev-1"))

	_, err = registry.Get(ctx, "dev-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRegistryService_RecordExpires(t *testing.T) {
	registry, kv := newTestRegistry(t)
	ctx := context.Background()

	now := time.Now()
	kv.Now = func() time.Time { return now }

	_, err := registry.Register(ctx, "dev-1", models.DeviceInfo{})
	require.NoError(t, err)

	// Past the 30-day TTL the record evicts; the device is simply
	// unregistered again, with no memory of ever having existed.
	now = now.Add(repositories.DeviceTTL + time.Minute)
	_, err = registry.Get(ctx, "dev-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
