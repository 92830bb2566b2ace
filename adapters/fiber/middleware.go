package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lucienvx/sesame/core"
)

// Locals keys populated by the session middleware.
const (
	LocalUser    = "user"
	LocalSession = "session"
)

// SessionMiddleware resolves the session cookie on every request. Valid
// sessions land in locals and get their cookie re-set so a sliding renewal
// reaches the client; anything else clears the cookie and continues
// logged-out. Never a 401: unauthenticated is a state, not an error.
func (a *Adapter) SessionMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.Next()
		}

		data, err := a.handler.ValidateSession(c.Context(), token)
		if err != nil {
			a.clearSessionCookie(c)
			return c.Next()
		}

		a.setSessionCookie(c, token, data.Session.ExpiresAt)
		c.Locals(LocalUser, data.User)
		c.Locals(LocalSession, data.Session)

		return c.Next()
	}
}

// Protected rejects requests without a valid session. Run it after
// SessionMiddleware on routes that need a login.
func (a *Adapter) Protected() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Locals(LocalUser) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}
		return c.Next()
	}
}

// UserFromCtx returns the authenticated user, or nil when logged out.
func UserFromCtx(c fiber.Ctx) *core.User {
	if u, ok := c.Locals(LocalUser).(*core.User); ok {
		return u
	}
	return nil
}

// SessionFromCtx returns the active session, or nil when logged out.
func SessionFromCtx(c fiber.Ctx) *core.Session {
	if s, ok := c.Locals(LocalSession).(*core.Session); ok {
		return s
	}
	return nil
}
