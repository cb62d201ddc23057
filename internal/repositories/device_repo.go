package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"parsegate/internal/models"
	"parsegate/internal/store"
)

const devicePrefix = "device:"

// DeviceTTL bounds how long a registration survives without a rewrite.
const DeviceTTL = 30 * 24 * time.Hour

// StoreDeviceRepository keeps device records in the key-value store as
// JSON under "device:{device_id}" with a 30-day TTL.
//
// Save always writes the full record with a fresh TTL. Because the
// store's put resets expiry, every rewrite (including a last-seen touch)
// extends the device's lifetime by another 30 days.
type StoreDeviceRepository struct {
	store store.Store
}

func NewStoreDeviceRepository(s store.Store) *StoreDeviceRepository {
	return &StoreDeviceRepository{store: s}
}

func (r *StoreDeviceRepository) Save(ctx context.Context, record *models.DeviceRecord) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal device record: %w", err)
	}

	key := devicePrefix + record.DeviceID
	if err := r.store.Put(ctx, key, jsonData, DeviceTTL); err != nil {
		return fmt.Errorf("failed to save device record: %w", err)
	}
	return nil
}

func (r *StoreDeviceRepository) Get(ctx context.Context, deviceID string) (*models.DeviceRecord, error) {
	key := devicePrefix + deviceID

	jsonData, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get device record: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	var record models.DeviceRecord
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device record: %w", err)
	}
	return &record, nil
}

func (r *StoreDeviceRepository) Delete(ctx context.Context, deviceID string) error {
	key := devicePrefix + deviceID
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete device record: %w", err)
	}
	return nil
}
