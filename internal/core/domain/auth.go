package domain

import "time"

// AuthRequest is one pending authorization code flow.
type AuthRequest struct {
	// URL is where the user grants access.
	URL string

	// State guards the callback against forgery.
	State string

	// Verifier is the PKCE code verifier sent with the code exchange.
	Verifier string

	// RedirectURI is the callback registered with the request.
	RedirectURI string
}

// AuthStatus describes the stored token.
type AuthStatus struct {
	Authenticated bool

	// Path is the token file location.
	Path string

	// Expiry is when the access token expires. Zero means unknown.
	Expiry time.Time

	// Refreshable is true when a refresh token is stored.
	Refreshable bool
}

// Expired returns true if the access token has expired at now.
func (s AuthStatus) Expired(now time.Time) bool {
	return !s.Expiry.IsZero() && !now.Before(s.Expiry)
}
