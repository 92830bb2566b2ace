package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lucienvx/sesame/core"
)

type emailForm struct {
	Email string `form:"email" json:"email"`
}

// linkRequest is the shared shape of sign-in, sign-up, and resend: bind the
// form, pin the pending-email cookie, run the flow, answer with a message.
func (a *Adapter) linkRequest(c fiber.Ctx, op func(fiber.Ctx, string) (string, error)) error {
	var input emailForm
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	// Set on every submission, valid or not, so the login page can keep
	// showing which address the flow belongs to.
	a.setPendingEmailCookie(c, input.Email)

	message, err := op(c, input.Email)
	if err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": message})
}

func (a *Adapter) signIn(c fiber.Ctx) error {
	return a.linkRequest(c, func(c fiber.Ctx, email string) (string, error) {
		return a.handler.SignIn(c.Context(), email)
	})
}

func (a *Adapter) signUp(c fiber.Ctx) error {
	return a.linkRequest(c, func(c fiber.Ctx, email string) (string, error) {
		return a.handler.SignUp(c.Context(), email)
	})
}

func (a *Adapter) resend(c fiber.Ctx) error {
	return a.linkRequest(c, func(c fiber.Ctx, email string) (string, error) {
		return a.handler.Resend(c.Context(), email)
	})
}

// signOut invalidates whatever session the cookie names and clears both
// cookies. Cookies are cleared even when the store call fails; a sign-out
// must always log the browser out. Safe to call logged out.
func (a *Adapter) signOut(c fiber.Ctx) error {
	token := c.Cookies(SessionCookie)

	a.clearSessionCookie(c)
	a.clearPendingEmailCookie(c)

	if token != "" {
		if err := a.handler.SignOut(c.Context(), token); err != nil {
			return handleAuthError(c, err)
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

// clearEmail resets an in-progress login. No store interaction.
func (a *Adapter) clearEmail(c fiber.Ctx) error {
	a.clearPendingEmailCookie(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

// verify redeems the magic link from the emailed URL. Redirect-only: the
// user lands here from their mail client, not from a fetch.
func (a *Adapter) verify(c fiber.Ctx) error {
	raw := c.Query("token")
	if raw == "" {
		return c.Redirect().Status(fiber.StatusFound).To("/login?error=MissingToken")
	}

	result, err := a.handler.Verify(c.Context(), raw)
	if err != nil {
		return c.Redirect().Status(fiber.StatusFound).To("/login?error=InvalidOrExpiredToken")
	}

	a.setSessionCookie(c, result.Token, result.Session.ExpiresAt)
	a.clearPendingEmailCookie(c)

	return c.Redirect().Status(fiber.StatusFound).To("/")
}

// handleAuthError maps auth errors to appropriate HTTP responses.
func handleAuthError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		// keep store/provider details out of responses
		return c.Status(status).JSON(fiber.Map{
			"error": "something went wrong, please try again later",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// mapErrorToStatus maps core error types to HTTP status codes.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests

	case errors.Is(err, core.ErrEmailBlocked),
		errors.Is(err, core.ErrEmailNotAllowed),
		errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrInvalidEmail):
		return http.StatusBadRequest

	default:
		// ErrDeliveryFailed and unexpected store failures
		return http.StatusInternalServerError
	}
}
