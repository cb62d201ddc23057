package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"parsegate/internal/models"
	"parsegate/internal/store"
)

const sessionPrefix = "session:"

// StoreSessionRepository keeps operator sessions in the key-value store
// with a TTL matching the session's expiry, so Redis evicts them on its
// own once the access token can no longer be valid.
type StoreSessionRepository struct {
	store store.Store
}

func NewStoreSessionRepository(s store.Store) *StoreSessionRepository {
	return &StoreSessionRepository{store: s}
}

func (r *StoreSessionRepository) Create(ctx context.Context, session *models.Session) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	key := sessionPrefix + session.ID
	if err := r.store.Put(ctx, key, jsonData, ttl); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func (r *StoreSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	key := sessionPrefix + id

	jsonData, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	var session models.Session
	if err := json.Unmarshal(jsonData, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *StoreSessionRepository) Delete(ctx context.Context, id string) error {
	key := sessionPrefix + id
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
