package driven

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenProvider supplies OAuth2 tokens for API calls.
// Implementations refresh expired tokens transparently and persist the
// refreshed token so the next process starts from it.
type TokenProvider interface {
	// TokenSource returns a token source bound to ctx.
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)

	// IsAuthenticated returns true if a stored token is available.
	IsAuthenticated() bool
}
