package core

import (
	"context"
	"time"
)

// Mailer delivers the verification link. Provided by the host (Resend, SES,
// SMTP); a no-op fake is fine for dev and tests.
//
// A returned error must mean delivery failure. There is no retry policy: a
// single failure is surfaced to the caller immediately.
type Mailer interface {
	SendMagicLink(ctx context.Context, to, link string, ttl time.Duration) error
}
