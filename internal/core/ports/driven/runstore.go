package driven

import (
	"context"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

// RunStore persists the export run history.
type RunStore interface {
	// Save stores or updates a run.
	Save(ctx context.Context, run domain.ExportRun) error

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.ExportRun, error)

	// List returns the most recent runs, newest first. tenant matches a
	// tenant ID or name; "" matches every tenant.
	List(ctx context.Context, tenant string, limit int) ([]domain.ExportRun, error)

	// LastSuccess returns the latest successful run for an endpoint, or
	// domain.ErrNotFound. tenant matches as in List.
	LastSuccess(ctx context.Context, tenant, endpoint string) (*domain.ExportRun, error)
}
