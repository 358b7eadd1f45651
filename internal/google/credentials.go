package google

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/calendar-mcp/internal/config"
)

// ErrNoCredentials is returned when no credential source is available.
var ErrNoCredentials = errors.New("no Google credentials configured")

// Kind names the credential source that was used.
type Kind string

const (
	KindServiceAccount Kind = "service_account"
	KindInstalledApp   Kind = "installed_app"
)

// Credentials is a resolved token source together with its origin.
type Credentials struct {
	Kind        Kind
	TokenSource oauth2.TokenSource
}

// Resolve returns the first available credential source from cfg.
func Resolve(ctx context.Context, cfg config.GoogleConfig) (*Credentials, error) {
	if cfg.ServiceAccountKey != "" {
		ts, err := serviceAccountSource(ctx, []byte(cfg.ServiceAccountKey))
		if err != nil {
			return nil, fmt.Errorf("invalid GOOGLE_SERVICE_ACCOUNT_KEY: %w", err)
		}
		return &Credentials{Kind: KindServiceAccount, TokenSource: ts}, nil
	}

	if cfg.ServiceAccountFile != "" {
		data, err := os.ReadFile(cfg.ServiceAccountFile)
		switch {
		case err == nil:
			ts, err := serviceAccountSource(ctx, data)
			if err != nil {
				return nil, fmt.Errorf("invalid service account file %s: %w", cfg.ServiceAccountFile, err)
			}
			return &Credentials{Kind: KindServiceAccount, TokenSource: ts}, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read service account file: %w", err)
		}
	}

	conf, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(cfg.TokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no token at %s, run 'calendar-mcp auth' first", ErrNoCredentials, cfg.TokenFile)
		}
		return nil, err
	}
	return &Credentials{Kind: KindInstalledApp, TokenSource: conf.TokenSource(ctx, tok)}, nil
}

// OAuthConfig reads the installed-app OAuth client from the credentials
// file. A non-zero redirect port replaces the redirect URL with a loopback
// address on that port.
func OAuthConfig(cfg config.GoogleConfig) (*oauth2.Config, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: credentials file %s not found", ErrNoCredentials, cfg.CredentialsFile)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	conf, err := google.ConfigFromJSON(data, DefaultScopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials file %s: %w", cfg.CredentialsFile, err)
	}
	if cfg.OAuthRedirectPort > 0 {
		conf.RedirectURL = fmt.Sprintf("http://localhost:%d/", cfg.OAuthRedirectPort)
	}
	return conf, nil
}

func serviceAccountSource(ctx context.Context, key []byte) (oauth2.TokenSource, error) {
	jwtConf, err := google.JWTConfigFromJSON(key, DefaultScopes...)
	if err != nil {
		return nil, err
	}
	return jwtConf.TokenSource(ctx), nil
}

// AuthenticationErrorMessage explains how to provide credentials.
func AuthenticationErrorMessage(cfg config.GoogleConfig) string {
	return fmt.Sprintf(`Google Calendar is not configured.

To grant access, either:
  1. Set GOOGLE_SERVICE_ACCOUNT_KEY or place a service account key at %s, or
  2. Place an OAuth client at %s and run 'calendar-mcp auth' to create %s.`,
		cfg.ServiceAccountFile, cfg.CredentialsFile, cfg.TokenFile)
}
