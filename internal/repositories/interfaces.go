package repositories

import (
	"context"
	"errors"

	"parsegate/internal/models"
)

var ErrNotFound = errors.New("not found")

// DeviceRepository persists device records in the key-value store.
// Storage only; secret derivation and lifecycle policy live in the
// registry service.
type DeviceRepository interface {
	Save(ctx context.Context, record *models.DeviceRecord) error
	Get(ctx context.Context, deviceID string) (*models.DeviceRecord, error)
	Delete(ctx context.Context, deviceID string) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuditRepository is the durable audit trail for auth decisions.
type AuditRepository interface {
	Record(ctx context.Context, event *models.AuditEvent) error
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]*models.AuditEvent, error)
}
