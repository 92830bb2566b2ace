package core

import (
	"context"
	"time"
)

// Storage ports. Implement these in the host app or use adapters/pgx.
// All access is by primary key or indexed column; the store is treated as a
// row store reached via parameterized queries, nothing more.

// UserStorage defines user-related database operations.
type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// MarkEmailVerified flips email_verified to true. Called once, on the
	// first successful magic-link redemption.
	MarkEmailVerified(ctx context.Context, userID string) error
}

// TokenStorage defines magic-link token operations. Token IDs are lookup
// hashes, never raw secrets.
type TokenStorage interface {
	CreateToken(ctx context.Context, t *MagicLinkToken) error
	GetToken(ctx context.Context, id string) (*MagicLinkToken, error)

	// GetLatestUserToken returns the most recently created token row for a
	// user (by created_at, most recent first), or ErrTokenNotFound.
	GetLatestUserToken(ctx context.Context, userID string) (*MagicLinkToken, error)

	DeleteToken(ctx context.Context, id string) error
	DeleteUserTokens(ctx context.Context, userID string) error

	// DeleteExpiredTokens removes rows with expires_at < now (unix seconds)
	// and reports how many were deleted. Cron material, not request-path.
	DeleteExpiredTokens(ctx context.Context, now int64) (int, error)
}

// SessionStorage defines session-related database operations.
type SessionStorage interface {
	CreateSession(ctx context.Context, s *Session) error

	// GetSessionWithUser joins session and user in one lookup, keyed by the
	// session's token hash. Returns ErrSessionNotFound on a miss.
	GetSessionWithUser(ctx context.Context, id string) (*Session, *User, error)

	UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) error
}

// AuthStorage is the full persistence surface sesame needs.
type AuthStorage interface {
	UserStorage
	TokenStorage
	SessionStorage
}
