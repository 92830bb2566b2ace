package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lucienvx/sesame/pkg/token"
)

// MagicLinkConfig controls token lifetime and issuance throttling.
type MagicLinkConfig struct {
	// TTL is how long an issued link stays redeemable.
	TTL time.Duration

	// RateLimitWindow is the minimum gap between issuances for one user.
	RateLimitWindow time.Duration
}

func DefaultMagicLinkConfig() MagicLinkConfig {
	return MagicLinkConfig{
		TTL:             15 * time.Minute,
		RateLimitWindow: 30 * time.Second,
	}
}

// MagicLinkManager issues, rate-limits, and redeems one-time sign-in tokens.
// It is the only writer of magic_link_token rows.
type MagicLinkManager struct {
	config  MagicLinkConfig
	storage TokenStorage
	now     func() time.Time
}

func NewMagicLinkManager(config MagicLinkConfig, storage TokenStorage) *MagicLinkManager {
	if config.TTL == 0 {
		config.TTL = 15 * time.Minute
	}
	if config.RateLimitWindow == 0 {
		config.RateLimitWindow = 30 * time.Second
	}

	return &MagicLinkManager{
		config:  config,
		storage: storage,
		now:     time.Now,
	}
}

// RedeemedToken is the identity a valid magic link was bound to.
type RedeemedToken struct {
	UserID string
	Email  string
}

// Issue deletes any existing token row for the user, inserts a fresh one
// keyed by the secret's hash, and returns the raw secret for embedding in a
// verification URL. Callers must check ShouldRateLimit first: Issue itself
// silently replaces whatever in-flight link the user may be holding.
func (m *MagicLinkManager) Issue(ctx context.Context, userID, email string) (string, error) {
	pair, err := token.NewPair()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := m.storage.DeleteUserTokens(ctx, userID); err != nil {
		return "", fmt.Errorf("failed to delete previous tokens: %w", err)
	}

	now := m.now().Unix()
	t := &MagicLinkToken{
		ID:        pair.Hash,
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now + int64(m.config.TTL.Seconds()),
	}

	if err := m.storage.CreateToken(ctx, t); err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	return pair.Raw, nil
}

// ShouldRateLimit reports whether the user's most recent token was issued
// less than RateLimitWindow ago. Exactly at the window boundary the answer
// is false.
//
// The check and the subsequent Issue are two store round-trips, not one
// transaction: two concurrent requests for the same user can both pass and
// the second Issue replaces the first request's link. Accepted as a
// best-effort limitation; per-row statements stay atomic either way.
func (m *MagicLinkManager) ShouldRateLimit(ctx context.Context, userID string) (bool, error) {
	latest, err := m.storage.GetLatestUserToken(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch latest token: %w", err)
	}

	return m.now().Unix() < latest.CreatedAt+int64(m.config.RateLimitWindow.Seconds()), nil
}

// Redeem consumes a magic link. The row is deleted no matter the outcome, so
// every link is single-use. A miss and an expired token are the same
// ErrTokenInvalid: callers cannot learn whether a probed token ever existed.
func (m *MagicLinkManager) Redeem(ctx context.Context, raw string) (*RedeemedToken, error) {
	if raw == "" {
		return nil, ErrTokenInvalid
	}

	id := token.Hash(raw)

	t, err := m.storage.GetToken(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to fetch token: %w", err)
	}

	// Single-use: consume before looking at expiry.
	if err := m.storage.DeleteToken(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}

	if m.now().Unix() >= t.ExpiresAt {
		return nil, ErrTokenInvalid
	}

	return &RedeemedToken{UserID: t.UserID, Email: t.Email}, nil
}

// CleanupExpired removes every token past its TTL. Redeem already deletes
// expired rows it touches; this catches links that were never clicked.
// Useful on a cron if leftover rows ever matter.
func (m *MagicLinkManager) CleanupExpired(ctx context.Context) (int, error) {
	return m.storage.DeleteExpiredTokens(ctx, m.now().Unix())
}
