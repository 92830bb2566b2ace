package core

import "time"

// User is an identity keyed by email. There is no password; proving control
// of the mailbox is the only credential.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}

// MagicLinkToken is a one-time sign-in token. ID is the SHA-256 lookup key of
// the raw secret, never the secret itself. Timestamps are unix seconds.
//
// Invariant: at most one live token per user. Issuing a new token deletes any
// prior row for the same user first.
type MagicLinkToken struct {
	ID        string `json:"-"` // hash of the raw secret (security!)
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Session is an active login. ID is the SHA-256 lookup key of the raw session
// token, so a leaked store dump yields no usable credentials.
type Session struct {
	ID        string    `json:"-"` // hash of the raw token (security!)
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionData combines user and session info.
// The model returned to hosts after validating a session token.
type SessionData struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}
