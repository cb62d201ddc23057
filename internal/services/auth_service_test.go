package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parsegate/internal/models"
	"parsegate/internal/repositories"
	"parsegate/internal/store"
	"parsegate/internal/utils"
)

const testAdminPassword = "operator-password-1"

func newTestAuthService(t *testing.T, rateLimit int) (*AuthService, *RegistryService) {
	t.Helper()

	kv := store.NewMemoryStore()
	devices := repositories.NewStoreDeviceRepository(kv)
	sessions := repositories.NewStoreSessionRepository(kv)
	registry := NewRegistryService(devices, "test-master-secret")
	limiter := NewRateLimiter(kv, rateLimit)
	verifier := NewSignatureVerifier(registry, 5*time.Minute)

	adminHash, err := utils.HashPassword(testAdminPassword)
	require.NoError(t, err)

	auth := NewAuthService(registry, limiter, verifier, sessions, adminHash, "test-jwt-secret", time.Hour)
	return auth, registry
}

func TestAuthService_AuthenticateTouchesDevice(t *testing.T) {
	auth, registry := newTestAuthService(t, 10)
	ctx := context.Background()

	record, err := registry.Register(ctx, "dev-1", models.DeviceInfo{})
	require.NoError(t, err)

	body := []byte(`{"text":"hello"}`)
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	signature := signBody(record.KeySeed, "dev-1", timestamp, body)

	require.NoError(t, auth.Authenticate(ctx, "dev-1", timestamp, signature, body))

	got, err := registry.Get(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.RequestCount, "successful call increments the counter")
}

func TestAuthService_BadSignatureDoesNotTouch(t *testing.T) {
	auth, registry := newTestAuthService(t, 10)
	ctx := context.Background()

	_, err := registry.Register(ctx, "dev-1", models.DeviceInfo{})
	require.NoError(t, err)

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	err = auth.Authenticate(ctx, "dev-1", timestamp, "bm90IHRoZSBzaWduYXR1cmU=", []byte(`{}`))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	got, err := registry.Get(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.RequestCount)
}

func TestAuthService_RateLimitRunsBeforeVerification(t *testing.T) {
	auth, registry := newTestAuthService(t, 2)
	ctx := context.Background()

	record, err := registry.Register(ctx, "dev-1", models.DeviceInfo{})
	require.NoError(t, err)

	// Failed verifications still consume quota: the limiter records
	// before the signature is checked.
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	for i := 0; i < 2; i++ {
		err := auth.Authenticate(ctx, "dev-1", timestamp, "bm9wZQ==", []byte(`{}`))
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	}

	body := []byte(`{}`)
	signature := signBody(record.KeySeed, "dev-1", timestamp, body)
	err = auth.Authenticate(ctx, "dev-1", timestamp, signature, body)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestAuthService_OperatorLoginFlow(t *testing.T) {
	auth, _ := newTestAuthService(t, 10)
	ctx := context.Background()

	_, err := auth.Login(ctx, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := auth.Login(ctx, testAdminPassword)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	sessionID, err := auth.VerifyAccessToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)

	// Logout deletes the session; the unexpired token stops working.
	require.NoError(t, auth.Logout(ctx, resp.Token))
	_, err = auth.VerifyAccessToken(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestAuthService_VerifyAccessTokenRejectsGarbage(t *testing.T) {
	auth, _ := newTestAuthService(t, 10)

	_, err := auth.VerifyAccessToken(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}
