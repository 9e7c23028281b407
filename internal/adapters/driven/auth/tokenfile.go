// Package auth supplies OAuth2 tokens for the Xero client.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
	"github.com/custodia-labs/xerosync/internal/logger"
)

// Xero identity endpoints.
const (
	XeroAuthURL  = "https://login.xero.com/identity/connect/authorize"
	XeroTokenURL = "https://identity.xero.com/connect/token"
)

// Scopes are requested at login. offline_access yields a refresh token.
var Scopes = []string{
	"offline_access",
	"accounting.transactions.read",
	"accounting.reports.read",
	"accounting.journals.read",
	"accounting.settings.read",
	"accounting.contacts.read",
	"accounting.attachments.read",
}

// Ensure TokenFileProvider implements the token and login ports.
var (
	_ driven.TokenProvider = (*TokenFileProvider)(nil)
	_ driven.AuthFlow      = (*TokenFileProvider)(nil)
)

// TokenFileProvider reads an OAuth2 token stored as JSON, refreshes it
// when it expires, and writes refreshed tokens back to the same file.
type TokenFileProvider struct {
	path   string
	config *oauth2.Config

	mu sync.Mutex
}

// NewTokenFileProvider creates a provider for the token stored at path.
// clientSecret may be empty for PKCE apps.
func NewTokenFileProvider(path, clientID, clientSecret string) *TokenFileProvider {
	return NewTokenFileProviderWithEndpoint(path, clientID, clientSecret, oauth2.Endpoint{
		AuthURL:   XeroAuthURL,
		TokenURL:  XeroTokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	})
}

// NewTokenFileProviderWithEndpoint is NewTokenFileProvider with a custom
// identity endpoint. Useful for testing.
func NewTokenFileProviderWithEndpoint(path, clientID, clientSecret string, endpoint oauth2.Endpoint) *TokenFileProvider {
	return &TokenFileProvider{
		path: path,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
		},
	}
}

// Path returns the token file path.
func (p *TokenFileProvider) Path() string {
	return p.path
}

// Load reads the stored token. A missing file is domain.ErrAuthRequired.
func (p *TokenFileProvider) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no token at %s", domain.ErrAuthRequired, p.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", p.path, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token at %s is empty", domain.ErrAuthRequired, p.path)
	}
	return &token, nil
}

// Save writes token to the token file with owner-only permissions.
func (p *TokenFileProvider) Save(token *oauth2.Token) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace token: %w", err)
	}
	return nil
}

// TokenSource returns a refreshing token source for the stored token.
func (p *TokenFileProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := p.Load()
	if err != nil {
		return nil, err
	}
	return &persistingSource{
		provider: p,
		base:     p.config.TokenSource(ctx, token),
		last:     token.AccessToken,
	}, nil
}

// AuthCodeURL returns the consent page URL with an S256 PKCE challenge.
func (p *TokenFileProvider) AuthCodeURL(redirectURI, state, verifier string) string {
	return p.loginConfig(redirectURI).AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades an authorization code for a token and saves it.
func (p *TokenFileProvider) Exchange(ctx context.Context, redirectURI, code, verifier string) (*oauth2.Token, error) {
	token, err := p.loginConfig(redirectURI).Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, err
	}
	if err := p.Save(token); err != nil {
		return nil, err
	}
	return token, nil
}

func (p *TokenFileProvider) loginConfig(redirectURI string) *oauth2.Config {
	cfg := *p.config
	cfg.RedirectURL = redirectURI
	cfg.Scopes = Scopes
	return &cfg
}

// IsAuthenticated returns true if a stored token is available.
func (p *TokenFileProvider) IsAuthenticated() bool {
	_, err := p.Load()
	return err == nil
}

// persistingSource saves every newly issued token.
type persistingSource struct {
	provider *TokenFileProvider
	base     oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: %w", domain.ErrAuthExpired, err)
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		logger.Debug("Refreshed access token, saving to %s", s.provider.path)
		if err := s.provider.Save(token); err != nil {
			return nil, err
		}
		s.last = token.AccessToken
	}
	return token, nil
}
