package driving

import (
	"context"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

// ExportRequest selects what an export run fetches and where it writes.
type ExportRequest struct {
	// Path is the output root; each tenant gets a subdirectory.
	Path string

	// Endpoints to sync, in order. Empty means the whole catalogue.
	Endpoints []string

	// Tenants to sync, by ID or name. Empty means every connected tenant.
	Tenants []string

	// Update resumes from the stored checkpoint and appends to existing files.
	Update bool

	// Split is the time partitioning of date-bearing output files.
	Split domain.Split

	// KeepGoing continues with the next tenant after a tenant fails.
	KeepGoing bool

	// MaxOpenFiles bounds the output file handle pool. Zero uses the default.
	MaxOpenFiles int

	// Progress, if set, receives a running entity count per endpoint.
	Progress Progress
}

// Progress receives a running entity count while an endpoint syncs.
type Progress func(tenant, endpoint string, entities int)

// EndpointInfo describes one entry of the endpoint catalogue.
type EndpointInfo struct {
	Name           string
	Kind           string
	LatestFields   []string
	SupportsUpdate bool
}

// Exporter syncs remote endpoints to local files.
type Exporter interface {
	// Export runs one export across the selected tenants and endpoints.
	Export(ctx context.Context, req ExportRequest) error

	// Endpoints lists the endpoint catalogue in default sync order.
	Endpoints() []EndpointInfo

	// Tenants lists the connected tenants.
	Tenants(ctx context.Context) ([]domain.Tenant, error)
}
