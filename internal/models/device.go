package models

import "time"

// DeviceInfo is free-form client metadata captured at registration and
// immutable afterwards.
type DeviceInfo struct {
	Model      string `json:"model,omitempty"`
	OSVersion  string `json:"os_version,omitempty"`
	AppVersion string `json:"app_version,omitempty"`
	Platform   string `json:"platform,omitempty"`
}

// DeviceRecord is the stored state for one registered device. The record
// is a cache with eviction, not a durable identity: absence means
// "unregistered" regardless of history.
type DeviceRecord struct {
	DeviceID     string     `json:"device_id"`
	KeySeed      string     `json:"key_seed,omitempty"`
	RegisteredAt time.Time  `json:"registered_at"`
	LastSeen     time.Time  `json:"last_seen"`
	RequestCount int64      `json:"request_count"`
	DeviceInfo   DeviceInfo `json:"device_info"`
}

// Redacted returns a copy with the signing secret blanked. Every read
// path except the registration response must use it; registration is the
// only channel through which a client learns its secret.
func (r *DeviceRecord) Redacted() *DeviceRecord {
	copied := *r
	copied.KeySeed = ""
	return &copied
}
