package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
	"github.com/custodia-labs/xerosync/internal/logger"
)

// Sleeper blocks for d, returning early with an error if ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CallWithRetry invokes call until it returns something other than a
// *domain.RateLimitError, sleeping for the server-supplied RetryAfter
// between attempts. There is no attempt limit.
func CallWithRetry[T any](ctx context.Context, sleep Sleeper, call func(context.Context) (T, error)) (T, error) {
	for {
		result, err := call(ctx)

		var rateLimitErr *domain.RateLimitError
		if !errors.As(err, &rateLimitErr) {
			return result, err
		}

		logger.Warn("Rate limited, retrying in %s", rateLimitErr.RetryAfter)
		if err := sleep(ctx, rateLimitErr.RetryAfter); err != nil {
			var zero T
			return zero, err
		}
	}
}

// Ensure retryingAPI implements the interface.
var _ driven.AccountingAPI = (*retryingAPI)(nil)

// retryingAPI hands out sources whose every call goes through CallWithRetry.
type retryingAPI struct {
	api   driven.AccountingAPI
	sleep Sleeper
}

// WithRetry wraps api so rate-limited calls are retried transparently.
// A nil sleep uses SleepContext.
func WithRetry(api driven.AccountingAPI, sleep Sleeper) driven.AccountingAPI {
	if sleep == nil {
		sleep = SleepContext
	}
	return &retryingAPI{api: api, sleep: sleep}
}

func (r *retryingAPI) Source(endpoint string) driven.EntitySource {
	return &retryingSource{source: r.api.Source(endpoint), sleep: r.sleep}
}

type retryingSource struct {
	source driven.EntitySource
	sleep  Sleeper
}

func (r *retryingSource) Endpoint() string {
	return r.source.Endpoint()
}

// FetchAll retries each page of a paged source on its own, so a rate
// limit on page n never refetches pages 1 to n-1.
func (r *retryingSource) FetchAll(ctx context.Context) ([]domain.Entity, error) {
	paged, ok := r.source.(driven.PagedSource)
	if !ok || paged.PageSize() <= 0 {
		return CallWithRetry(ctx, r.sleep, r.source.FetchAll)
	}

	size := paged.PageSize()
	var all []domain.Entity
	for page := 1; ; page++ {
		batch, err := r.FetchFiltered(ctx, driven.FetchOptions{Page: page, PageSize: size})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		all = append(all, batch...)
		if len(batch) < size {
			return all, nil
		}
	}
}

func (r *retryingSource) FetchFiltered(ctx context.Context, opts driven.FetchOptions) ([]domain.Entity, error) {
	return CallWithRetry(ctx, r.sleep, func(ctx context.Context) ([]domain.Entity, error) {
		return r.source.FetchFiltered(ctx, opts)
	})
}

func (r *retryingSource) FetchByID(ctx context.Context, id string) (domain.Entity, error) {
	return CallWithRetry(ctx, r.sleep, func(ctx context.Context) (domain.Entity, error) {
		return r.source.FetchByID(ctx, id)
	})
}

func (r *retryingSource) FetchAttachments(ctx context.Context, id string) (domain.Entity, error) {
	return CallWithRetry(ctx, r.sleep, func(ctx context.Context) (domain.Entity, error) {
		return r.source.FetchAttachments(ctx, id)
	})
}
