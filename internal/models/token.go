package models

// TokenPayload is the claims section of a device token. The token is
// stateless: its validity is re-derivable from its own bytes plus the
// process-wide token secret, so it is never persisted.
type TokenPayload struct {
	DeviceID  string `json:"device_id"`
	IssuedAt  int64  `json:"issued_at"`  // epoch milliseconds
	ExpiresAt int64  `json:"expires_at"` // epoch milliseconds
}
