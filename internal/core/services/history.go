package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
	"github.com/custodia-labs/xerosync/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// DefaultHistoryLimit is used when no limit is given.
const DefaultHistoryLimit = 20

// HistoryService reads the export run history.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a history service.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// Recent returns the latest runs for tenant (ID or name, "" for all).
func (s *HistoryService) Recent(ctx context.Context, tenant string, limit int) ([]domain.ExportRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	runs, err := s.runs.List(ctx, tenant, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// LastSuccess returns the latest successful export of endpoint.
func (s *HistoryService) LastSuccess(ctx context.Context, tenant, endpoint string) (*domain.ExportRun, error) {
	if s.runs == nil {
		return nil, domain.ErrNotFound
	}
	run, err := s.runs.LastSuccess(ctx, tenant, endpoint)
	if err != nil {
		return nil, fmt.Errorf("last %s run: %w", endpoint, err)
	}
	return run, nil
}
