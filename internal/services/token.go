package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"parsegate/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const (
	tokenSeparator = "."
	tokenTTL       = 30 * 24 * time.Hour
)

// TokenIssuer mints and verifies self-contained device tokens:
// base64(JSON payload) "." base64(HMAC-SHA256(tokenSecret, encoded payload)).
// The signing secret is process-wide and distinct from any device's key
// seed, so a token stays checkable even after its device re-registers.
type TokenIssuer struct {
	secret string
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: secret,
		now:    time.Now,
	}
}

// Issue mints a token for the device, valid for 30 days.
func (t *TokenIssuer) Issue(deviceID string) (string, error) {
	now := t.now()
	payload := models.TokenPayload{
		DeviceID:  deviceID,
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(tokenTTL).UnixMilli(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal token payload: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(jsonData)
	return encoded + tokenSeparator + t.sign(encoded), nil
}

// Verify checks the signature and expiry and returns the payload. Any
// structural problem or signature mismatch is ErrInvalidToken; a token
// past its expires_at is ErrTokenExpired.
func (t *TokenIssuer) Verify(token string) (*models.TokenPayload, error) {
	encoded, signature, found := strings.Cut(token, tokenSeparator)
	if !found || strings.Contains(signature, tokenSeparator) {
		return nil, ErrInvalidToken
	}

	if !hmac.Equal([]byte(signature), []byte(t.sign(encoded))) {
		return nil, ErrInvalidToken
	}

	jsonData, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var payload models.TokenPayload
	if err := json.Unmarshal(jsonData, &payload); err != nil {
		return nil, ErrInvalidToken
	}

	if t.now().UnixMilli() > payload.ExpiresAt {
		return nil, ErrTokenExpired
	}
	return &payload, nil
}

// sign computes base64(HMAC-SHA256(secret, encodedPayload)).
func (t *TokenIssuer) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, []byte(t.secret))
	mac.Write([]byte(encodedPayload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
