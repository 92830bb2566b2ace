// Package fiber mounts sesame's auth flows on a Fiber v3 app: form handlers,
// cookie management, the verification redirect endpoint, and the session
// middleware. All policy lives in core; this package only translates HTTP.
package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lucienvx/sesame/core"
)

// Config tunes the adapter. The zero value suits local development.
type Config struct {
	// SecureCookies marks cookies Secure; enable in production.
	SecureCookies bool

	// RequestsPerMinute caps auth form submissions per client IP.
	// Zero disables the per-IP limiter.
	RequestsPerMinute int
}

type Adapter struct {
	app     *fiber.App
	config  Config
	handler core.AuthHandler
	limiter *ipLimiter
}

var _ core.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App, config ...Config) *Adapter {
	a := &Adapter{app: app}
	if len(config) > 0 {
		a.config = config[0]
	}
	if a.config.RequestsPerMinute > 0 {
		a.limiter = newIPLimiter(a.config.RequestsPerMinute)
	}
	return a
}

func (a *Adapter) RegisterRoutes(handler core.AuthHandler, basePath string) error {
	a.handler = handler

	api := a.app.Group(basePath)
	if a.limiter != nil {
		api.Use(a.limitByIP)
	}

	api.Post("/sign-in", a.signIn)
	api.Post("/sign-up", a.signUp)
	api.Post("/resend", a.resend)
	api.Post("/sign-out", a.signOut)
	api.Post("/clear-email", a.clearEmail)

	// The link in the email points here, outside the API group.
	a.app.Get(core.VerifyPath, a.verify)

	return nil
}
