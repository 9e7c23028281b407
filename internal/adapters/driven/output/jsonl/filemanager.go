// Package jsonl writes entities as newline-delimited JSON through a
// bounded pool of open files.
package jsonl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
)

// DefaultMaxOpenFiles is used when no positive limit is given.
const DefaultMaxOpenFiles = domain.DefaultMaxOpenFiles

// Serializer renders one entity as a single line, without the newline.
type Serializer func(entity domain.Entity) ([]byte, error)

// CompactJSON removes insignificant whitespace so a record fits one line.
func CompactJSON(entity domain.Entity) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, entity); err != nil {
		return nil, fmt.Errorf("%w: entity is not valid JSON: %w", domain.ErrInvalidInput, err)
	}
	return buf.Bytes(), nil
}

// Ensure FileManager implements the interface.
var _ driven.EntityWriter = (*FileManager)(nil)

// FileManager keeps at most maxOpen files open, closing the least recently
// written one to make room. A path is truncated the first time it is
// opened in the manager's lifetime and appended to on every reopen.
//
// FileManager is not safe for concurrent use.
type FileManager struct {
	maxOpen    int
	serializer Serializer
	files      *simplelru.LRU[string, *os.File]
	seen       map[string]struct{}
	closeErrs  []error
}

// NewFileManager creates a file manager. A nil serializer uses CompactJSON.
func NewFileManager(maxOpenFiles int, serializer Serializer) *FileManager {
	if maxOpenFiles < 1 {
		maxOpenFiles = DefaultMaxOpenFiles
	}
	if serializer == nil {
		serializer = CompactJSON
	}
	m := &FileManager{
		maxOpen:    maxOpenFiles,
		serializer: serializer,
		seen:       make(map[string]struct{}),
	}
	// Only fails for a non-positive size.
	m.files, _ = simplelru.NewLRU[string, *os.File](maxOpenFiles, m.onEvict)
	return m
}

// Factory returns a driven.WriterFactory producing file managers.
func Factory(serializer Serializer) driven.WriterFactory {
	return func(maxOpenFiles int) driven.EntityWriter {
		return NewFileManager(maxOpenFiles, serializer)
	}
}

func (m *FileManager) onEvict(path string, f *os.File) {
	if err := f.Close(); err != nil {
		m.closeErrs = append(m.closeErrs, fmt.Errorf("close %s: %w", path, err))
	}
}

// Write appends one record to path, opening it if needed.
func (m *FileManager) Write(entity domain.Entity, path string, appendHint bool) error {
	data, err := m.serializer(entity)
	if err != nil {
		return fmt.Errorf("serialise for %s: %w", path, err)
	}

	f, err := m.open(path, appendHint)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (m *FileManager) open(path string, appendHint bool) (*os.File, error) {
	if f, ok := m.files.Get(path); ok {
		return f, nil
	}

	if m.files.Len() >= m.maxOpen {
		m.files.RemoveOldest()
		if err := m.takeCloseErrs(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", path, err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if _, seen := m.seen[path]; !seen && !appendHint {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	m.seen[path] = struct{}{}
	m.files.Add(path, f)
	return f, nil
}

// OpenFiles returns the open paths, least recently written first.
func (m *FileManager) OpenFiles() []string {
	return m.files.Keys()
}

// Close closes every open file. Later calls are no-ops.
func (m *FileManager) Close() error {
	m.files.Purge()
	return m.takeCloseErrs()
}

func (m *FileManager) takeCloseErrs() error {
	err := errors.Join(m.closeErrs...)
	m.closeErrs = nil
	return err
}
