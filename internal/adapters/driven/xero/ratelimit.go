package xero

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

const (
	// DefaultRequestsPerMinute is the per-tenant minute limit Xero enforces.
	DefaultRequestsPerMinute = 60

	// DefaultRetryAfter is used when a 429 carries no usable Retry-After.
	DefaultRetryAfter = 60 * time.Second

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"

	// HeaderMinRemaining is the remaining calls in the current minute.
	HeaderMinRemaining = "X-MinLimit-Remaining"

	// HeaderDayRemaining is the remaining calls in the current day.
	HeaderDayRemaining = "X-DayLimit-Remaining"

	// HeaderLimitProblem names the limit that was hit on a 429.
	HeaderLimitProblem = "X-Rate-Limit-Problem"

	// DayLimitWarning is the remaining daily allowance below which a
	// tenant's low quota is reported.
	DayLimitWarning = 500
)

// RateLimiter throttles requests ahead of Xero's limits and turns 429
// responses into *domain.RateLimitError.
type RateLimiter struct {
	mu           sync.Mutex
	minRemaining int
	dayRemaining int
	warned       map[string]bool
	bucket       *rate.Limiter
}

// NewRateLimiter creates a limiter allowing requestsPerMinute requests.
// A non-positive value disables proactive throttling.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(requestsPerMinute))
	}
	return &RateLimiter{
		minRemaining: -1,
		dayRemaining: -1,
		warned:       make(map[string]bool),
		bucket:       rate.NewLimiter(limit, 1),
	}
}

// Bucket returns the proactive token bucket.
func (r *RateLimiter) Bucket() *rate.Limiter {
	return r.bucket
}

// UpdateFromResponse records the remaining-call headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if val, err := strconv.Atoi(resp.Header.Get(HeaderMinRemaining)); err == nil {
		r.minRemaining = val
	}
	if val, err := strconv.Atoi(resp.Header.Get(HeaderDayRemaining)); err == nil {
		r.dayRemaining = val
	}
}

// CheckRateLimit returns a *domain.RateLimitError for a 429 response.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil {
		return nil
	}
	r.UpdateFromResponse(resp)

	if resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}
	return &domain.RateLimitError{RetryAfter: ParseRetryAfter(resp.Header.Get(HeaderRetryAfter))}
}

// Remaining returns the last reported minute and day allowances, or -1
// when Xero has not reported them yet.
func (r *RateLimiter) Remaining() (minute, day int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.minRemaining, r.dayRemaining
}

// LowDailyQuota reports the tenant's remaining daily allowance and whether
// it has just dropped below DayLimitWarning. It returns true at most once
// per tenant.
func (r *RateLimiter) LowDailyQuota(tenantID string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dayRemaining < 0 || r.dayRemaining >= DayLimitWarning || r.warned[tenantID] {
		return r.dayRemaining, false
	}
	r.warned[tenantID] = true
	return r.dayRemaining, true
}

// ParseRetryAfter reads a Retry-After value in whole seconds.
func ParseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return DefaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}
