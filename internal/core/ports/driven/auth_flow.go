package driven

import (
	"context"

	"golang.org/x/oauth2"
)

// AuthFlow runs the OAuth2 authorization code flow with PKCE and stores
// the resulting token.
type AuthFlow interface {
	// AuthCodeURL returns the consent page URL for one login attempt.
	AuthCodeURL(redirectURI, state, verifier string) string

	// Exchange trades an authorization code for a token and stores it.
	Exchange(ctx context.Context, redirectURI, code, verifier string) (*oauth2.Token, error)

	// Load returns the stored token.
	// Returns domain.ErrAuthRequired if none is stored.
	Load() (*oauth2.Token, error)

	// Path returns where the token is stored.
	Path() string
}
