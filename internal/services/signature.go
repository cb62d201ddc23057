package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"log"
	"strconv"
	"time"
)

// SignatureVerifier checks that a request was produced by the holder of
// a registered device's key seed, within a bounded time window.
//
// Signature contract, fixed for interoperability:
//
//	message  = timestamp + deviceID + lowercaseHex(SHA256(rawBody))
//	expected = base64(HMAC-SHA256(keySeed, message))
//
// where timestamp is the decimal epoch-millisecond string as received,
// rawBody is the exact bytes transmitted (hashing any re-encoded form is
// a contract violation), and the base64 keySeed string is used as its
// raw UTF-8 bytes, not decoded.
type SignatureVerifier struct {
	registry *RegistryService
	window   time.Duration
	now      func() time.Time
}

func NewSignatureVerifier(registry *RegistryService, window time.Duration) *SignatureVerifier {
	return &SignatureVerifier{
		registry: registry,
		window:   window,
		now:      time.Now,
	}
}

// Verify reports whether the signature is valid. Every failure mode —
// unknown device, unparsable timestamp, expired window, store fault, bad
// signature — collapses to false so callers cannot distinguish them;
// detail goes to the internal log only.
func (v *SignatureVerifier) Verify(ctx context.Context, deviceID, timestamp, signature string, rawBody []byte) bool {
	record, err := v.registry.Get(ctx, deviceID)
	if err != nil {
		log.Printf("signature: lookup failed for device %s: %v", deviceID, err)
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		log.Printf("signature: bad timestamp from device %s", deviceID)
		return false
	}

	// Symmetric replay window: stale and future timestamps are rejected
	// by the same bound. Exactly-at-bound is accepted.
	skew := v.now().UnixMilli() - ts
	if skew < 0 {
		skew = -skew
	}
	if skew > v.window.Milliseconds() {
		log.Printf("signature: timestamp outside window for device %s (skew %dms)", deviceID, skew)
		return false
	}

	digest := sha256.Sum256(rawBody)
	mac := hmac.New(sha256.New, []byte(record.KeySeed))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(deviceID))
	mac.Write([]byte(hex.EncodeToString(digest[:])))
	expected := mac.Sum(nil)

	provided, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		log.Printf("signature: malformed signature from device %s", deviceID)
		return false
	}

	return hmac.Equal(provided, expected)
}
