// Package resend delivers magic link emails through the Resend HTTP API
// (https://resend.com). It satisfies the core Mailer port; any transactional
// provider can stand in by implementing the same one-method interface.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lucienvx/sesame/core"
)

const (
	defaultEndpoint = "https://api.resend.com/emails"
	defaultFrom     = "🧙 <onboarding@resend.dev>"
	defaultSubject  = "Magic Link 🪄"
)

// Config tunes the mailer. Only APIKey is required.
type Config struct {
	APIKey string

	// From overrides the sender, e.g. "Acme <login@acme.com>". Defaults to
	// Resend's onboarding sender, which only delivers to your own account.
	From string

	// Subject overrides the email subject line.
	Subject string

	// Endpoint overrides the API URL. Used by tests.
	Endpoint string

	// Client overrides the HTTP client. Defaults to one with a 10s timeout.
	Client *http.Client
}

type Mailer struct {
	config Config
}

var _ core.Mailer = (*Mailer)(nil)

func New(config Config) *Mailer {
	if config.From == "" {
		config.From = defaultFrom
	}
	if config.Subject == "" {
		config.Subject = defaultSubject
	}
	if config.Endpoint == "" {
		config.Endpoint = defaultEndpoint
	}
	if config.Client == nil {
		config.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Mailer{config: config}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *Mailer) SendMagicLink(ctx context.Context, to, link string, ttl time.Duration) error {
	payload, err := json.Marshal(sendRequest{
		From:    m.config.From,
		To:      []string{to},
		Subject: m.config.Subject,
		HTML:    emailBody(link, ttl),
	})
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.config.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend returned %d: %s", resp.StatusCode, body)
	}

	return nil
}

func emailBody(link string, ttl time.Duration) string {
	minutes := int(ttl.Minutes())
	return fmt.Sprintf(
		`<p>Click the link below to sign in:</p>
<p><a href="%s">Sign in</a></p>
<p>This link expires in %d minutes. If you didn't request it, you can safely ignore this email.</p>`,
		link, minutes,
	)
}
