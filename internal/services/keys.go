package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"
)

// DeriveKeySeed derives a device's signing secret from the process-wide
// master secret: base64(HMAC-SHA256(masterSecret, masterSecret + deviceID
// + issuance epoch-milliseconds)).
//
// The issuance time is part of the signed material, so derivation is not
// idempotent: the same device derived at a different instant yields a
// different secret. Derive exactly once per registration and persist the
// result immediately; never re-derive for comparison.
func DeriveKeySeed(masterSecret, deviceID string, issuedAt time.Time) string {
	mac := hmac.New(sha256.New, []byte(masterSecret))
	mac.Write([]byte(masterSecret))
	mac.Write([]byte(deviceID))
	mac.Write([]byte(strconv.FormatInt(issuedAt.UnixMilli(), 10)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
