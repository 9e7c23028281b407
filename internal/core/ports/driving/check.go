package driving

import (
	"context"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

// Checker validates exported files.
type Checker interface {
	// Kinds lists the checkable record kinds, e.g. "journals".
	Kinds() []string

	// Check reads NDJSON files of one kind and summarises them.
	// Integrity problems are reported as *domain.CheckError.
	Check(ctx context.Context, kind string, paths []string) (*domain.CheckSummary, error)
}

// HistoryService exposes past export runs.
type HistoryService interface {
	// Recent returns the latest runs, newest first.
	Recent(ctx context.Context, tenant string, limit int) ([]domain.ExportRun, error)

	// LastSuccess returns the latest successful export of endpoint, or
	// domain.ErrNotFound. An empty tenant matches every tenant.
	LastSuccess(ctx context.Context, tenant, endpoint string) (*domain.ExportRun, error)
}
