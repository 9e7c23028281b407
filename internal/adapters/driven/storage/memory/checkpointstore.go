package memory

import (
	"sync"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
)

// Ensure CheckpointStore implements the interface.
var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore is an in-memory implementation of driven.CheckpointStore
// keyed by path.
type CheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*domain.Checkpoint
	saves       int
	loadErr     error
}

// NewCheckpointStore creates a new in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		checkpoints: make(map[string]*domain.Checkpoint),
	}
}

// Load returns a copy of the checkpoint at path, or an empty one.
func (s *CheckpointStore) Load(path string) (*domain.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	cp, ok := s.checkpoints[path]
	if !ok {
		return domain.NewCheckpoint(), nil
	}
	return copyCheckpoint(cp), nil
}

// Save stores a copy of checkpoint at path.
func (s *CheckpointStore) Save(path string, checkpoint *domain.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[path] = copyCheckpoint(checkpoint)
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *CheckpointStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// FailLoads makes every later Load return err. Pass nil to reset.
func (s *CheckpointStore) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

func copyCheckpoint(cp *domain.Checkpoint) *domain.Checkpoint {
	out := domain.NewCheckpoint()
	for _, endpoint := range cp.Endpoints() {
		cursor, _ := cp.Get(endpoint)
		out.Set(endpoint, cursor.Clone())
	}
	return out
}
