// Package sesame is an embeddable passwordless ("magic link") authentication
// library: email-based sign-in/sign-up, short-lived one-time tokens,
// long-lived cookie sessions with sliding renewal, and rate limiting of link
// issuance. Hosts plug in storage, mail delivery, and an HTTP framework
// through the adapter interfaces.
package sesame

import (
	"log/slog"

	"github.com/lucienvx/sesame/core"
)

// interfaces
type (
	AuthStorage = core.AuthStorage
	Mailer      = core.Mailer
	Cache       = core.Cache

	HTTPAdapter = core.HTTPAdapter
	AuthHandler = core.AuthHandler
)

// structs
type (
	AuthService      = core.AuthService
	MagicLinkManager = core.MagicLinkManager
	SessionManager   = core.SessionManager

	MagicLinkConfig = core.MagicLinkConfig
	SessionConfig   = core.SessionConfig
	CacheConfig     = core.CacheConfig
	AuthPolicy      = core.AuthPolicy
)

type (
	User           = core.User
	MagicLinkToken = core.MagicLinkToken
	Session        = core.Session
	SessionData    = core.SessionData
	VerifyResult   = core.VerifyResult
	CacheStats     = core.CacheStats
)

const defaultBasePath = "/auth"

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache       = core.NewInMemoryCache
	DefaultMagicLinkConfig = core.DefaultMagicLinkConfig
	DefaultSessionConfig   = core.DefaultSessionConfig
)

var (
	ErrRateLimited     = core.ErrRateLimited
	ErrEmailBlocked    = core.ErrEmailBlocked
	ErrEmailNotAllowed = core.ErrEmailNotAllowed
	ErrDeliveryFailed  = core.ErrDeliveryFailed
	ErrTokenInvalid    = core.ErrTokenInvalid
)

var (
	ErrSessionNotFound = core.ErrSessionNotFound
	ErrSessionExpired  = core.ErrSessionExpired
	ErrUserNotFound    = core.ErrUserNotFound
	ErrEmailRequired   = core.ErrEmailRequired
	ErrInvalidEmail    = core.ErrInvalidEmail
)

var (
	ErrStorageRequired     = core.ErrStorageRequired
	ErrMailerRequired      = core.ErrMailerRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrBaseURLRequired     = core.ErrBaseURLRequired
)

// Config wires a Sesame instance together.
type Config struct {
	// BaseURL is the public origin verification links are built against,
	// e.g. "https://app.example.com".
	BaseURL string

	Database AuthStorage
	Mailer   Mailer
	HTTP     HTTPAdapter

	// Optional config
	MagicLinkConfig *MagicLinkConfig
	SessionConfig   *SessionConfig
	CacheAdapter    Cache
	DisableCache    bool
	AllowedEmails   []string
	BlockedEmails   []string
	BasePath        string
	Logger          *slog.Logger
}

// Sesame is a configured instance with its routes registered.
type Sesame struct {
	Auth     *AuthService
	Links    *MagicLinkManager
	Sessions *SessionManager
	BasePath string
}

func New(config Config) (*Sesame, error) {
	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}
	if config.Database == nil {
		return nil, ErrStorageRequired
	}
	if config.Mailer == nil {
		return nil, ErrMailerRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheAdapter = NewInMemoryCache(CacheConfig{})
	}

	magicLinkConfig := config.MagicLinkConfig
	if magicLinkConfig == nil {
		c := DefaultMagicLinkConfig()
		magicLinkConfig = &c
	}

	sessionConfig := config.SessionConfig
	if sessionConfig == nil {
		c := DefaultSessionConfig()
		sessionConfig = &c
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	links := core.NewMagicLinkManager(*magicLinkConfig, config.Database)
	sessions := core.NewSessionManager(*sessionConfig, config.Database, cacheAdapter)

	auth := core.NewAuthService(
		config.Database,
		config.Mailer,
		links,
		sessions,
		config.BaseURL,
		AuthPolicy{AllowedEmails: config.AllowedEmails, BlockedEmails: config.BlockedEmails},
		config.Logger,
	)

	s := &Sesame{
		Auth:     auth,
		Links:    links,
		Sessions: sessions,
		BasePath: basePath,
	}

	if err := config.HTTP.RegisterRoutes(auth, basePath); err != nil {
		return nil, err
	}

	return s, nil
}
