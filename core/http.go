package core

import "context"

// AuthHandler provides the authentication operations HTTP adapters expose.
// Cookie handling, redirects, and response shapes belong to the adapter;
// everything behind this interface is framework-agnostic.
type AuthHandler interface {
	SignIn(ctx context.Context, email string) (string, error)
	SignUp(ctx context.Context, email string) (string, error)
	Resend(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, rawToken string) (*VerifyResult, error)
	SignOut(ctx context.Context, rawSessionToken string) error
	ValidateSession(ctx context.Context, rawSessionToken string) (*SessionData, error)
}

// HTTPAdapter mounts the auth routes on a host framework.
type HTTPAdapter interface {
	RegisterRoutes(handler AuthHandler, basePath string) error
}
