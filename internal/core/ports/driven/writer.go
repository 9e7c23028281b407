package driven

import "github.com/custodia-labs/xerosync/internal/core/domain"

// EntityWriter routes entities to output files.
type EntityWriter interface {
	// Write appends one record to path. The first write to a path in a run
	// truncates it unless appendHint is set.
	Write(entity domain.Entity, path string, appendHint bool) error

	// Close closes every open file. It is safe to call more than once.
	Close() error
}

// WriterFactory opens a fresh EntityWriter for one export run holding at
// most maxOpenFiles handles. Zero selects the implementation default.
type WriterFactory func(maxOpenFiles int) EntityWriter
