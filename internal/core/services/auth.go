package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
	"github.com/custodia-labs/xerosync/internal/core/ports/driving"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService drives the Xero login and reports the stored token.
type AuthService struct {
	flow driven.AuthFlow
}

// NewAuthService creates an auth service.
func NewAuthService(flow driven.AuthFlow) *AuthService {
	return &AuthService{flow: flow}
}

// Begin starts a login whose callback arrives at redirectURI.
func (s *AuthService) Begin(redirectURI string) (*domain.AuthRequest, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	return &domain.AuthRequest{
		URL:         s.flow.AuthCodeURL(redirectURI, state, verifier),
		State:       state,
		Verifier:    verifier,
		RedirectURI: redirectURI,
	}, nil
}

// Complete exchanges the callback code and stores the token.
func (s *AuthService) Complete(ctx context.Context, req *domain.AuthRequest, code string) error {
	if code == "" {
		return fmt.Errorf("%w: empty authorization code", domain.ErrInvalidInput)
	}
	if _, err := s.flow.Exchange(ctx, req.RedirectURI, code, req.Verifier); err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return nil
}

// Status describes the stored token.
func (s *AuthService) Status() (domain.AuthStatus, error) {
	status := domain.AuthStatus{Path: s.flow.Path()}

	token, err := s.flow.Load()
	if errors.Is(err, domain.ErrAuthRequired) {
		return status, nil
	}
	if err != nil {
		return status, err
	}

	status.Authenticated = true
	status.Expiry = token.Expiry
	status.Refreshable = token.RefreshToken != ""
	return status, nil
}

// generateState creates a random state parameter for CSRF protection.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
