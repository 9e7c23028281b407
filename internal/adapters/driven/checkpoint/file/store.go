// Package file stores checkpoints as pretty-printed JSON files.
package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CheckpointStore = (*Store)(nil)

// Store reads and writes latest.json checkpoint files.
//
// The file is a JSON object keyed by endpoint. Each value is null or an
// object of cursor fields. Fields whose name contains "Date" hold
// timestamps; all others hold integers.
type Store struct{}

// NewStore creates a checkpoint file store.
func NewStore() *Store {
	return &Store{}
}

// Load reads the checkpoint at path. A missing file is an empty checkpoint.
func (s *Store) Load(path string) (*domain.Checkpoint, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewCheckpoint(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	cp, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cp, nil
}

// Save writes checkpoint to path through a temporary file, so a crash
// leaves either the old file or the new one.
func (s *Store) Save(path string, checkpoint *domain.Checkpoint) error {
	data, err := Encode(checkpoint)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".latest-*.json")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod checkpoint: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}

// Decode parses checkpoint JSON, keeping endpoint and field order.
func Decode(data []byte) (*domain.Checkpoint, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", domain.ErrCheckpointCorrupt)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", domain.ErrCheckpointCorrupt)
	}

	cp := domain.NewCheckpoint()
	var decodeErr error
	root.ForEach(func(endpoint, value gjson.Result) bool {
		cursor, err := decodeCursor(value)
		if err != nil {
			decodeErr = fmt.Errorf("%w: %s: %w", domain.ErrCheckpointCorrupt, endpoint.String(), err)
			return false
		}
		cp.Set(endpoint.String(), cursor)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return cp, nil
}

func decodeCursor(value gjson.Result) (*domain.Cursor, error) {
	if value.Type == gjson.Null {
		return nil, nil
	}
	if !value.IsObject() {
		return nil, fmt.Errorf("cursor is not an object")
	}

	cursor := domain.NewCursor()
	var fieldErr error
	value.ForEach(func(key, v gjson.Result) bool {
		name := key.String()
		switch {
		case v.Type == gjson.Null:
			// recorded without a value
		case domain.IsTimeField(name) && v.Type == gjson.String:
			t, err := domain.ParseTime(v.String())
			if err != nil {
				fieldErr = fmt.Errorf("%s: %w", name, err)
				return false
			}
			cursor.SetTime(name, t)
		case v.Type == gjson.Number:
			cursor.SetInt(name, v.Int())
		default:
			fieldErr = fmt.Errorf("%s: unexpected value %s", name, v.Raw)
			return false
		}
		return true
	})
	if fieldErr != nil {
		return nil, fieldErr
	}
	return cursor, nil
}

// Encode renders a checkpoint as JSON indented by two spaces, without a
// trailing newline.
func Encode(checkpoint *domain.Checkpoint) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, endpoint := range checkpoint.Endpoints() {
		if i > 0 {
			compact.WriteByte(',')
		}
		if err := writeString(&compact, endpoint); err != nil {
			return nil, err
		}
		compact.WriteByte(':')

		cursor, _ := checkpoint.Get(endpoint)
		if err := encodeCursor(&compact, cursor); err != nil {
			return nil, fmt.Errorf("encode %s: %w", endpoint, err)
		}
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indent checkpoint: %w", err)
	}
	return out.Bytes(), nil
}

func encodeCursor(buf *bytes.Buffer, cursor *domain.Cursor) error {
	if cursor == nil {
		buf.WriteString("null")
		return nil
	}
	buf.WriteByte('{')
	for i, name := range cursor.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, name); err != nil {
			return err
		}
		buf.WriteByte(':')

		if t, ok := cursor.Time(name); ok {
			if err := writeString(buf, domain.FormatTime(t)); err != nil {
				return err
			}
			continue
		}
		n, ok := cursor.Int(name)
		if !ok {
			return fmt.Errorf("%w: %s has no encodable value", domain.ErrInvalidInput, name)
		}
		fmt.Fprintf(buf, "%d", n)
	}
	buf.WriteByte('}')
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
