package xero

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

// ErrUnexpectedResponse indicates a response body of the wrong shape.
var ErrUnexpectedResponse = errors.New("xero: unexpected response")

// APIError represents a non-success Xero API response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("xero: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Is maps status codes onto domain errors: 401 and 403 match
// domain.ErrAuthRequired, 404 matches domain.ErrNotFound.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrAuthRequired:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
