package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.ExportRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.ExportRun),
	}
}

// Save stores or updates a run.
func (s *RunStore) Save(_ context.Context, run domain.ExportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, id string) (*domain.ExportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// List returns the most recent runs for tenant, newest first.
func (s *RunStore) List(_ context.Context, tenant string, limit int) ([]domain.ExportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ExportRun
	for _, run := range s.runs {
		if tenant == "" || run.TenantID == tenant || run.TenantName == tenant {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LastSuccess returns the latest successful run for an endpoint.
func (s *RunStore) LastSuccess(ctx context.Context, tenant, endpoint string) (*domain.ExportRun, error) {
	runs, err := s.List(ctx, tenant, 0)
	if err != nil {
		return nil, err
	}
	for _, run := range runs {
		if run.Endpoint == endpoint && run.Status == domain.RunSucceeded {
			return &run, nil
		}
	}
	return nil, domain.ErrNotFound
}
