package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parsegate/internal/models"
	"parsegate/internal/repositories"
)

// RegistryService owns the device lifecycle: registration with secret
// derivation, lookup, last-seen accounting and revocation.
type RegistryService struct {
	devices      repositories.DeviceRepository
	masterSecret string
	now          func() time.Time
}

func NewRegistryService(devices repositories.DeviceRepository, masterSecret string) *RegistryService {
	return &RegistryService{
		devices:      devices,
		masterSecret: masterSecret,
		now:          time.Now,
	}
}

// Register derives a fresh key seed and persists a new record. An
// existing record for the same device ID is overwritten, secret
// included: registration is idempotent-by-overwrite, not
// reject-on-conflict. The returned record carries the seed; this is the
// only time the secret leaves the server.
func (s *RegistryService) Register(ctx context.Context, deviceID string, info models.DeviceInfo) (*models.DeviceRecord, error) {
	now := s.now()

	record := &models.DeviceRecord{
		DeviceID:     deviceID,
		KeySeed:      DeriveKeySeed(s.masterSecret, deviceID, now),
		RegisteredAt: now,
		LastSeen:     now,
		RequestCount: 0,
		DeviceInfo:   info,
	}

	if err := s.devices.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	return record, nil
}

// Get looks up a device record. Absence surfaces as
// repositories.ErrNotFound and means "unregistered or expired", which is
// a valid outcome rather than a fault.
func (s *RegistryService) Get(ctx context.Context, deviceID string) (*models.DeviceRecord, error) {
	return s.devices.Get(ctx, deviceID)
}

// Touch advances last_seen and increments the advisory request counter,
// rewriting the full record. For an unregistered device it is a no-op.
// The rewrite refreshes the store TTL, so active devices never expire.
func (s *RegistryService) Touch(ctx context.Context, deviceID string) error {
	record, err := s.devices.Get(ctx, deviceID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get device for touch: %w", err)
	}

	record.LastSeen = s.now()
	record.RequestCount++

	if err := s.devices.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	return nil
}

// Revoke removes a device record. The registry is a cache, so revocation
// is deletion; the device may re-register and receive a new secret.
func (s *RegistryService) Revoke(ctx context.Context, deviceID string) error {
	return s.devices.Delete(ctx, deviceID)
}
