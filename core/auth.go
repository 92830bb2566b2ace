package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/lucienvx/sesame/pkg/token"
)

// VerifyPath is where hosts must serve the redemption endpoint. The raw
// secret rides in the "token" query parameter.
const VerifyPath = "/login/verify"

// User-facing copy. Sign-in and resend deliberately read the same whether or
// not the account exists (enumeration resistance).
const (
	MsgSignInLinkSent = "If an account with that email exists, a sign-in link has been sent."
	MsgSignUpLinkSent = "We'll attempt to create your account. Please check your email for further instructions."
	MsgResendLinkSent = "If an account exists for that email, a new link was sent."
)

// AuthPolicy is the process-start configuration for sign-up gating.
// Empty lists mean unrestricted.
type AuthPolicy struct {
	AllowedEmails []string
	BlockedEmails []string
}

// AuthService orchestrates the managers for the sign-in, sign-up, resend,
// sign-out, and verify flows. It holds no per-request state; everything
// ephemeral (the pending-email cookie) lives with the HTTP adapter.
type AuthService struct {
	store    AuthStorage
	mailer   Mailer
	links    *MagicLinkManager
	sessions *SessionManager
	baseURL  string
	allowed  map[string]struct{}
	blocked  map[string]struct{}
	log      *slog.Logger
}

// Ensure AuthService satisfies the port HTTP adapters program against.
var _ AuthHandler = (*AuthService)(nil)

func NewAuthService(store AuthStorage, mailer Mailer, links *MagicLinkManager, sessions *SessionManager, baseURL string, policy AuthPolicy, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}

	return &AuthService{
		store:    store,
		mailer:   mailer,
		links:    links,
		sessions: sessions,
		baseURL:  strings.TrimRight(baseURL, "/"),
		allowed:  emailSet(policy.AllowedEmails),
		blocked:  emailSet(policy.BlockedEmails),
		log:      log,
	}
}

func emailSet(emails []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		set[normalizeEmail(e)] = struct{}{}
	}
	return set
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// SignIn requests a magic link for an existing account. Whether or not the
// account exists, the caller gets the same message back; only the rate limit
// and a failed send are reported as errors.
func (s *AuthService) SignIn(ctx context.Context, email string) (string, error) {
	email, err := validateEmail(email)
	if err != nil {
		return "", err
	}

	if err := s.requestLink(ctx, email); err != nil {
		return "", err
	}

	return MsgSignInLinkSent, nil
}

// SignUp requests a magic link, lazily creating the account if none exists.
// Allow/block lists apply here and only here.
func (s *AuthService) SignUp(ctx context.Context, email string) (string, error) {
	email, err := validateEmail(email)
	if err != nil {
		return "", err
	}

	if len(s.blocked) > 0 {
		if _, hit := s.blocked[email]; hit {
			return "", ErrEmailBlocked
		}
	}
	if len(s.allowed) > 0 {
		if _, hit := s.allowed[email]; !hit {
			return "", ErrEmailNotAllowed
		}
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return "", fmt.Errorf("failed to check existing user: %w", err)
		}
		user = &User{ID: uuid.NewString(), Email: email, EmailVerified: false}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return "", fmt.Errorf("failed to create user: %w", err)
		}
	}

	if err := s.issueAndSend(ctx, user); err != nil {
		return "", err
	}

	return MsgSignUpLinkSent, nil
}

// Resend is SignIn with different copy. It never creates a user.
func (s *AuthService) Resend(ctx context.Context, email string) (string, error) {
	email, err := validateEmail(email)
	if err != nil {
		return "", err
	}

	if err := s.requestLink(ctx, email); err != nil {
		return "", err
	}

	return MsgResendLinkSent, nil
}

// requestLink is the shared sign-in/resend path: a miss on the user lookup
// is a silent no-op so responses stay identical for unknown emails.
func (s *AuthService) requestLink(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	return s.issueAndSend(ctx, user)
}

// issueAndSend applies the rate limit, issues a token, and attempts email
// delivery. On delivery failure the token row is left in place: the link was
// never sent, so the row sits orphaned until its TTL expires. Deleting it
// here would let a failed send reset the rate-limit window.
func (s *AuthService) issueAndSend(ctx context.Context, user *User) error {
	limited, err := s.links.ShouldRateLimit(ctx, user.ID)
	if err != nil {
		return err
	}
	if limited {
		return ErrRateLimited
	}

	raw, err := s.links.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return err
	}

	link := s.baseURL + VerifyPath + "?token=" + url.QueryEscape(raw)

	if err := s.mailer.SendMagicLink(ctx, user.Email, link, s.links.config.TTL); err != nil {
		s.log.Error("magic link delivery failed", "email", user.Email, "error", err)
		return ErrDeliveryFailed
	}

	return nil
}

// VerifyResult is what a successful redemption yields: the verified user,
// the new session, and the raw session token for the cookie.
type VerifyResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Token   string   `json:"token"` // the raw token (not the hash)
}

// Verify redeems a magic link, marks the bound email verified, and starts a
// session. Any redemption miss is ErrTokenInvalid.
func (s *AuthService) Verify(ctx context.Context, rawToken string) (*VerifyResult, error) {
	redeemed, err := s.links.Redeem(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	if err := s.store.MarkEmailVerified(ctx, redeemed.UserID); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}

	result, err := s.sessions.Create(ctx, redeemed.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &VerifyResult{
		User:    &User{ID: redeemed.UserID, Email: redeemed.Email, EmailVerified: true},
		Session: result.Session,
		Token:   result.Token,
	}, nil
}

// SignOut invalidates the session behind a raw cookie token. Safe to call
// with an empty or unknown token; sign-out is idempotent.
func (s *AuthService) SignOut(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	return s.sessions.Invalidate(ctx, token.Hash(rawToken))
}

// ValidateSession resolves a raw session token to its user and session,
// applying expiry and sliding renewal. Misses surface as
// ErrSessionNotFound/ErrSessionExpired for the adapter to treat as
// logged-out.
func (s *AuthService) ValidateSession(ctx context.Context, rawToken string) (*SessionData, error) {
	return s.sessions.Validate(ctx, rawToken)
}
