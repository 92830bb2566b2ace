package core

import "errors"

// Policy errors surfaced to end users
var (
	ErrRateLimited     = errors.New("a sign-in link was recently sent, wait before requesting a new one") // 429
	ErrEmailBlocked    = errors.New("this email address is blocked from signing up")                      // 400
	ErrEmailNotAllowed = errors.New("this email is not allowed to sign up")                               // 400
	ErrDeliveryFailed  = errors.New("could not deliver the sign-in email")                                // 500
)

// Token errors. "Expired" and "never existed" are deliberately one outcome so
// probing links leaks nothing.
var (
	ErrTokenInvalid  = errors.New("invalid or expired magic link")
	ErrTokenNotFound = errors.New("magic link token not found") // storage-level miss
)

// Session errors. These never reach an end user; the host treats any of them
// as a logged-out request.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrCacheNotFound   = errors.New("session not found in cache")
)

// User/input errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailRequired = errors.New("email is required")     // 400
	ErrInvalidEmail  = errors.New("invalid email address") // 400
)

// Config errors (server-side configuration)
var (
	ErrStorageRequired     = errors.New("storage adapter is required") // 500
	ErrMailerRequired      = errors.New("mailer adapter is required")  // 500
	ErrHTTPAdapterRequired = errors.New("http adapter is required")    // 500
	ErrBaseURLRequired     = errors.New("base url is required")        // 500
)
