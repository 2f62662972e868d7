// Package config loads meetinvite settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"meetinvite/internal/credential"
)

// Email providers.
const (
	ProviderResend   = "resend"
	ProviderPostmark = "postmark"
	ProviderOutbox   = "outbox"
)

type Config struct {
	ResendAPIKey  string        `env:"RESEND_API_KEY"`
	ResendBaseURL string        `env:"RESEND_BASE_URL" envDefault:"https://api.resend.com"`
	Provider      string        `env:"EMAIL_PROVIDER" envDefault:"resend"`
	From          string        `env:"INVITE_FROM" envDefault:"noreply@tymeai.com"`
	Subject       string        `env:"INVITE_SUBJECT" envDefault:"Meeting Invite"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"0s"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`

	// CredentialStore is the credential file; empty means credential.DefaultPath.
	CredentialStore string `env:"CREDENTIAL_STORE"`

	// PostmarkServerToken takes precedence over the stored key when
	// EMAIL_PROVIDER=postmark.
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	OutboxDir            string `env:"OUTBOX_DIR" envDefault:"outbox"`

	Google GoogleConfig `envPrefix:"GOOGLE_"`
	CalDAV CalDAVConfig `envPrefix:"CALDAV_"`
}

type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Account      string `env:"ACCOUNT"`
	CalendarID   string `env:"CALENDAR_ID" envDefault:"primary"`
	TokenDir     string `env:"TOKEN_DIR" envDefault:"."`
}

type CalDAVConfig struct {
	Endpoint string `env:"ENDPOINT" envDefault:"https://caldav.icloud.com/"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	Calendar string `env:"CALENDAR"`
}

// Load reads .env, if present, and then the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	switch cfg.Provider {
	case ProviderResend, ProviderPostmark, ProviderOutbox:
	default:
		return nil, fmt.Errorf("unknown EMAIL_PROVIDER %q", cfg.Provider)
	}
	return cfg, nil
}

// CredentialPath returns the credential file to use.
func (c *Config) CredentialPath() (string, error) {
	if c.CredentialStore != "" {
		return c.CredentialStore, nil
	}
	return credential.DefaultPath()
}

// Credentials returns the store the API key is read from: the environment
// first, then the credential file. The Postmark server token is consulted
// before both when Postmark is the provider.
func (c *Config) Credentials() (credential.Store, error) {
	path, err := c.CredentialPath()
	if err != nil {
		return nil, err
	}
	var chain credential.Chain
	if c.Provider == ProviderPostmark {
		chain = append(chain, credential.Static{credential.APIKeyName: c.PostmarkServerToken})
	}
	return append(chain,
		credential.Static{credential.APIKeyName: c.ResendAPIKey},
		credential.NewFileStore(path),
	), nil
}

// CalDAVEnabled reports whether enough CalDAV settings are present to publish.
func (c *Config) CalDAVEnabled() bool {
	return c.CalDAV.Username != "" && c.CalDAV.Password != "" && c.CalDAV.Calendar != ""
}
