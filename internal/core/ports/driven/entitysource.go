package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

// FetchOptions narrows a FetchFiltered call. Zero values are omitted.
type FetchOptions struct {
	// Offset is the journal number to continue after.
	Offset int64

	// Page is the 1-based page number for page-numbered endpoints.
	Page int

	// PageSize is the number of entities per page.
	PageSize int

	// Since restricts results to entities modified at or after this time.
	Since time.Time

	// Where is a server-side filter expression.
	Where string
}

// EntitySource fetches the entities of one remote endpoint for one tenant.
// Any method may fail with *domain.RateLimitError; every other error is
// fatal to the endpoint being synced.
type EntitySource interface {
	// Endpoint returns the remote endpoint name, e.g. "BankTransactions".
	Endpoint() string

	// FetchAll returns every entity, paginating internally if needed.
	FetchAll(ctx context.Context) ([]domain.Entity, error)

	// FetchFiltered returns one batch selected by opts.
	FetchFiltered(ctx context.Context, opts FetchOptions) ([]domain.Entity, error)

	// FetchByID returns a single entity.
	FetchByID(ctx context.Context, id string) (domain.Entity, error)

	// FetchAttachments returns the attachment list of one entity. The raw
	// response is either a JSON array or an object with an "Attachments" array.
	FetchAttachments(ctx context.Context, id string) (domain.Entity, error)
}

// PagedSource is implemented by sources whose FetchAll walks numbered
// pages through FetchFiltered. Callers that retry per request page through
// FetchFiltered themselves so a failed page does not refetch earlier ones.
type PagedSource interface {
	EntitySource

	// PageSize returns the page size FetchAll requests, or 0 when the
	// endpoint is not paged.
	PageSize() int
}

// AccountingAPI resolves entity sources for a single tenant.
type AccountingAPI interface {
	// Source returns the entity source for a remote endpoint name.
	Source(endpoint string) EntitySource
}

// TenantLister lists the tenants the current credentials can access.
type TenantLister interface {
	Tenants(ctx context.Context) ([]domain.Tenant, error)
}

// APIFactory creates tenant-scoped API clients.
type APIFactory interface {
	TenantLister

	// ForTenant returns an API bound to one tenant.
	ForTenant(tenant domain.Tenant) AccountingAPI
}
