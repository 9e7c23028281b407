package driving

import (
	"context"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

// AuthService signs in to Xero and reports the stored token.
type AuthService interface {
	// Begin starts a login whose callback arrives at redirectURI.
	Begin(redirectURI string) (*domain.AuthRequest, error)

	// Complete exchanges the callback code and stores the token.
	Complete(ctx context.Context, req *domain.AuthRequest, code string) error

	// Status describes the stored token.
	Status() (domain.AuthStatus, error)
}
