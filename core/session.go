package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lucienvx/sesame/pkg/token"
)

// SessionConfig controls session lifetime and the sliding-renewal policy.
type SessionConfig struct {
	// MaxAge is the lifetime granted at creation and on each renewal.
	MaxAge time.Duration

	// RenewalWindow is how much remaining lifetime triggers a renewal on
	// Validate. With MaxAge 30d and RenewalWindow 15d, active users stay
	// logged in indefinitely while idle sessions lapse.
	RenewalWindow time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge:        30 * 24 * time.Hour,
		RenewalWindow: 15 * 24 * time.Hour,
	}
}

// SessionManager issues, validates, and revokes sessions. It is the only
// writer of session rows.
type SessionManager struct {
	config  SessionConfig
	storage SessionStorage
	cache   Cache // optional, nil disables caching
	now     func() time.Time
}

func NewSessionManager(config SessionConfig, storage SessionStorage, cache Cache) *SessionManager {
	if config.MaxAge == 0 {
		config.MaxAge = 30 * 24 * time.Hour
	}
	if config.RenewalWindow == 0 {
		config.RenewalWindow = config.MaxAge / 2
	}

	return &SessionManager{
		config:  config,
		storage: storage,
		cache:   cache,
		now:     time.Now,
	}
}

// CreateSessionResult carries the persisted session and the raw token that
// goes into the cookie. Only the hash is stored.
type CreateSessionResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"` // the raw token (not the hash)
}

// Create generates a fresh secret and persists a session keyed by its hash.
func (sm *SessionManager) Create(ctx context.Context, userID string) (*CreateSessionResult, error) {
	pair, err := token.NewPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session := &Session{
		ID:        pair.Hash,
		UserID:    userID,
		ExpiresAt: sm.now().Add(sm.config.MaxAge),
	}

	if err := sm.storage.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &CreateSessionResult{Session: session, Token: pair.Raw}, nil
}

// Validate hashes the client token and resolves session plus user in one
// store lookup. An expired session is deleted on read (soft delete); a
// session inside the renewal window gets its expiry pushed out to now+MaxAge
// as a side effect. ErrSessionNotFound / ErrSessionExpired mean "logged
// out", never a user-facing failure.
func (sm *SessionManager) Validate(ctx context.Context, raw string) (*SessionData, error) {
	if raw == "" {
		return nil, ErrSessionNotFound
	}

	id := token.Hash(raw)

	if sm.cache != nil {
		if data, err := sm.cache.Get(id); err == nil {
			return sm.finishValidate(ctx, id, data)
		}
		// cache miss, fall through to storage
	}

	session, user, err := sm.storage.GetSessionWithUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	data := &SessionData{User: user, Session: session}
	if sm.cache != nil {
		_ = sm.cache.Set(id, data)
	}

	return sm.finishValidate(ctx, id, data)
}

// finishValidate applies expiry and sliding renewal to a resolved session.
func (sm *SessionManager) finishValidate(ctx context.Context, id string, data *SessionData) (*SessionData, error) {
	now := sm.now()

	if !now.Before(data.Session.ExpiresAt) {
		if sm.cache != nil {
			_ = sm.cache.Delete(id)
		}
		if err := sm.storage.DeleteSession(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, ErrSessionExpired
	}

	if !now.Before(data.Session.ExpiresAt.Add(-sm.config.RenewalWindow)) {
		data.Session.ExpiresAt = now.Add(sm.config.MaxAge)
		if err := sm.storage.UpdateSessionExpiry(ctx, id, data.Session.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to renew session: %w", err)
		}
		if sm.cache != nil {
			_ = sm.cache.Set(id, data)
		}
	}

	return data, nil
}

// Invalidate deletes a single session by its ID (the token hash).
// Unconditional and idempotent; used on sign-out.
func (sm *SessionManager) Invalidate(ctx context.Context, sessionID string) error {
	if sm.cache != nil {
		_ = sm.cache.Delete(sessionID)
	}

	return sm.storage.DeleteSession(ctx, sessionID)
}

// InvalidateAll deletes every session belonging to a user. Exposed for
// "sign out everywhere"; no built-in handler calls it yet.
func (sm *SessionManager) InvalidateAll(ctx context.Context, userID string) error {
	if sm.cache != nil {
		_ = sm.cache.Clear()
	}

	return sm.storage.DeleteUserSessions(ctx, userID)
}
