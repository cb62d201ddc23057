package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"parsegate/internal/models"
	"parsegate/internal/repositories"
	"parsegate/internal/utils"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidAccessToken   = errors.New("invalid access token")
)

// AuthService gates authenticated device calls and owns the operator
// login plane.
type AuthService struct {
	registry  *RegistryService
	limiter   *RateLimiter
	verifier  *SignatureVerifier
	sessions  repositories.SessionRepository
	adminHash string
	jwtSecret string
	jwtExpiry time.Duration
}

type LoginResponse struct {
	Token     string
	ExpiresAt time.Time
}

func NewAuthService(
	registry *RegistryService,
	limiter *RateLimiter,
	verifier *SignatureVerifier,
	sessions repositories.SessionRepository,
	adminHash string,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		registry:  registry,
		limiter:   limiter,
		verifier:  verifier,
		sessions:  sessions,
		adminHash: adminHash,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// Authenticate runs the gate for one device call, in this order: rate
// limiter, signature verifier, last-seen touch. Returns ErrRateLimited
// or ErrAuthenticationFailed; the caller maps them to client-visible
// signals. A touch failure is logged and swallowed — the counter is
// advisory and must not fail an already-authenticated request.
func (s *AuthService) Authenticate(ctx context.Context, deviceID, timestamp, signature string, rawBody []byte) error {
	if err := s.limiter.CheckAndRecord(ctx, deviceID); err != nil {
		if errors.Is(err, ErrRateLimited) {
			return err
		}
		// Store faults at the auth boundary downgrade to an auth
		// failure so clients cannot tell infrastructure problems from
		// bad credentials.
		log.Printf("auth: rate limiter failed for device %s: %v", deviceID, err)
		return ErrAuthenticationFailed
	}

	if !s.verifier.Verify(ctx, deviceID, timestamp, signature, rawBody) {
		return ErrAuthenticationFailed
	}

	if err := s.registry.Touch(ctx, deviceID); err != nil {
		log.Printf("auth: touch failed for device %s: %v", deviceID, err)
	}
	return nil
}

// Login checks the operator password against the configured bcrypt hash
// and issues an access token bound to a stored session. Deleting the
// session (logout) revokes the token before its expiry.
func (s *AuthService) Login(ctx context.Context, password string) (*LoginResponse, error) {
	if !utils.CheckPassword(s.adminHash, password) {
		return nil, ErrInvalidCredentials
	}

	sessionID := uuid.New().String()
	expiresAt := time.Now().Add(s.jwtExpiry)
	session := &models.Session{
		ID:        sessionID,
		Subject:   "operator",
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	claims := jwt.MapClaims{
		"sub": session.Subject,
		"jti": sessionID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// VerifyAccessToken validates an operator token and confirms its session
// still exists, so logged-out tokens are rejected even while unexpired.
// Returns the session ID.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidAccessToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidAccessToken
	}
	sessionID, ok := claims["jti"].(string)
	if !ok || sessionID == "" {
		return "", ErrInvalidAccessToken
	}

	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return "", ErrInvalidAccessToken
	}
	return sessionID, nil
}

// Logout deletes the session referenced by the token.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	sessionID, err := s.VerifyAccessToken(ctx, tokenString)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
