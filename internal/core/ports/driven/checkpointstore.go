package driven

import "github.com/custodia-labs/xerosync/internal/core/domain"

// CheckpointStore persists per-tenant checkpoints.
type CheckpointStore interface {
	// Load reads the checkpoint at path. A missing file yields an empty
	// checkpoint; a malformed one fails with domain.ErrCheckpointCorrupt.
	Load(path string) (*domain.Checkpoint, error)

	// Save replaces the checkpoint at path, creating parent directories.
	Save(path string, checkpoint *domain.Checkpoint) error
}
