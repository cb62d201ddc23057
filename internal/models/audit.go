package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit event kinds recorded for auth decisions.
const (
	EventDeviceRegistered = "device_registered"
	EventDeviceRevoked    = "device_revoked"
	EventAuthFailed       = "auth_failed"
	EventRateLimited      = "rate_limited"
	EventParseCompleted   = "parse_completed"
	EventParseFailed      = "parse_failed"
)

// AuditEvent is one row in the durable audit trail. Recording is
// best-effort: a failed insert is logged and never fails the request
// that produced it.
type AuditEvent struct {
	ID        uuid.UUID `json:"id"`
	DeviceID  string    `json:"device_id"`
	Event     string    `json:"event"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
