package sesame

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lucienvx/sesame/core"
)

type mockHTTPAdapter struct {
	registered bool
	basePath   string
	handler    AuthHandler
	err        error
}

func (m *mockHTTPAdapter) RegisterRoutes(handler AuthHandler, basePath string) error {
	if m.err != nil {
		return m.err
	}
	m.registered = true
	m.basePath = basePath
	m.handler = handler
	return nil
}

func validConfig() (Config, *mockHTTPAdapter) {
	http := &mockHTTPAdapter{}
	return Config{
		BaseURL:  "https://app.example.com",
		Database: core.NewFakeAuthStorage(),
		Mailer:   core.NewFakeMailer(),
		HTTP:     http,
	}, http
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "missing base url", mutate: func(c *Config) { c.BaseURL = "" }, wantErr: ErrBaseURLRequired},
		{name: "missing database", mutate: func(c *Config) { c.Database = nil }, wantErr: ErrStorageRequired},
		{name: "missing mailer", mutate: func(c *Config) { c.Mailer = nil }, wantErr: ErrMailerRequired},
		{name: "missing http adapter", mutate: func(c *Config) { c.HTTP = nil }, wantErr: ErrHTTPAdapterRequired},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config, _ := validConfig()
			test.mutate(&config)

			_, err := New(config)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("New() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	config, http := validConfig()

	s, err := New(config)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !http.registered {
		t.Error("routes were not registered")
	}
	if http.basePath != "/auth" {
		t.Errorf("basePath = %q, want %q", http.basePath, "/auth")
	}
	if http.handler == nil {
		t.Error("handler not passed to HTTP adapter")
	}
	if s.Auth == nil || s.Links == nil || s.Sessions == nil {
		t.Error("managers not constructed")
	}
}

func TestNew_CustomBasePath(t *testing.T) {
	config, http := validConfig()
	config.BasePath = "/api/auth"

	if _, err := New(config); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if http.basePath != "/api/auth" {
		t.Errorf("basePath = %q, want %q", http.basePath, "/api/auth")
	}
}

func TestNew_RegisterRoutesFailure(t *testing.T) {
	config, http := validConfig()
	http.err = errors.New("route conflict")

	if _, err := New(config); err == nil {
		t.Fatal("New() expected error from RegisterRoutes")
	}
}

// Smoke test: a freshly wired instance can run the full flow end to end
// against the in-memory fakes.
func TestNew_EndToEndFlow(t *testing.T) {
	ctx := context.Background()
	config, http := validConfig()
	mailer := core.NewFakeMailer()
	config.Mailer = mailer
	config.SessionConfig = &SessionConfig{MaxAge: 30 * 24 * time.Hour, RenewalWindow: 15 * 24 * time.Hour}

	s, err := New(config)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := http.handler.SignUp(ctx, "a@x.com"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	sends := mailer.Sends()
	if len(sends) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sends))
	}

	// Pull the raw token back out of the link the mailer saw.
	link := sends[0].Link
	idx := strings.Index(link, "?token=")
	if idx < 0 {
		t.Fatalf("link %q has no token parameter", link)
	}
	raw := link[idx+len("?token="):]

	result, err := http.handler.Verify(ctx, raw)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !result.User.EmailVerified {
		t.Error("user not marked verified")
	}

	data, err := s.Auth.ValidateSession(ctx, result.Token)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if data.User.Email != "a@x.com" {
		t.Errorf("session user = %q, want %q", data.User.Email, "a@x.com")
	}

	if err := http.handler.SignOut(ctx, result.Token); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := s.Auth.ValidateSession(ctx, result.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("ValidateSession() after sign-out error = %v, want ErrSessionNotFound", err)
	}
}
