package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"
)

const (
	// SessionCookie carries the raw session secret; only its hash is stored
	// server-side.
	SessionCookie = "session"

	// PendingEmailCookie tracks the email an in-progress login belongs to.
	// Purely client-side state, never persisted.
	PendingEmailCookie = "userEmail"

	pendingEmailMaxAge = 15 * 60 // seconds
)

func (a *Adapter) setSessionCookie(c fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  expiresAt,
		Path:     "/",
		HTTPOnly: true,
		Secure:   a.config.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (a *Adapter) clearSessionCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HTTPOnly: true,
		Secure:   a.config.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (a *Adapter) setPendingEmailCookie(c fiber.Ctx, email string) {
	c.Cookie(&fiber.Cookie{
		Name:     PendingEmailCookie,
		Value:    email,
		MaxAge:   pendingEmailMaxAge,
		Path:     "/",
		HTTPOnly: true,
		Secure:   a.config.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (a *Adapter) clearPendingEmailCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     PendingEmailCookie,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HTTPOnly: true,
		Secure:   a.config.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
