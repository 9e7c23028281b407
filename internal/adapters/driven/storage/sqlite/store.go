package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/xerosync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/xerosync/internal/core/domain"
	"github.com/custodia-labs/xerosync/internal/core/ports/driven"
)

// DatabaseFile is the default history database name.
const DatabaseFile = "history.db"

// Store is a SQLite database holding the export run history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the database at path, creating it if needed.
// If path is empty, defaults to ~/.xerosync/history.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".xerosync", DatabaseFile)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL lets `history` read while an export writes.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_export_runs.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

const runColumns = `id, tenant_id, tenant_name, endpoint, is_update, started_at, finished_at, entities, status, error`

// Save stores or updates a run.
func (s *runStore) Save(ctx context.Context, run domain.ExportRun) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO export_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			entities = excluded.entities,
			status = excluded.status,
			error = excluded.error
	`, run.ID, run.TenantID, run.TenantName, run.Endpoint, run.Update,
		run.StartedAt.UTC(), nullTime(run.FinishedAt), run.Entities,
		string(run.Status), nullString(run.Error))

	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.ExportRun, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM export_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs for tenant, newest first.
func (s *runStore) List(ctx context.Context, tenant string, limit int) ([]domain.ExportRun, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM export_runs
		WHERE ? = '' OR tenant_id = ? OR tenant_name = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, tenant, tenant, tenant, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ExportRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// LastSuccess returns the latest successful run for an endpoint.
func (s *runStore) LastSuccess(ctx context.Context, tenant, endpoint string) (*domain.ExportRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM export_runs
		WHERE (? = '' OR tenant_id = ? OR tenant_name = ?) AND endpoint = ? AND status = ?
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`, tenant, tenant, tenant, endpoint, string(domain.RunSucceeded))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.ExportRun, error) {
	var run domain.ExportRun
	var status string
	var finishedAt sql.NullTime
	var errText sql.NullString
	err := row.Scan(&run.ID, &run.TenantID, &run.TenantName, &run.Endpoint, &run.Update,
		&run.StartedAt, &finishedAt, &run.Entities, &status, &errText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	run.Status = domain.RunStatus(status)
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	run.Error = errText.String
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
