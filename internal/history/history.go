// Package history keeps an audit log of sync runs and the poster files each
// run renamed, orphaned or deleted.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmunix/postersync/internal/migrations"
	_ "modernc.org/sqlite"
)

// Run triggers.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
	TriggerBatch     = "batch"
	TriggerServe     = "serve"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Run is one sync execution.
type Run struct {
	ID         int64
	Trigger    string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Items      int
	Created    int
	Renamed    int
	Updated    int
	Orphaned   int
	Errors     int
	Message    string
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Change is one file operation performed by a run.
type Change struct {
	ID        int64
	RunID     int64
	MediaType string
	OldName   string
	NewName   string
	Reason    string
	CreatedAt time.Time
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  *string
	Trigger *string
	Limit   int
}

// Store persists run history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the history database at path and applies
// pending migrations. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path
	}
	dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// A single connection keeps in-memory databases shared across calls.
	db.SetMaxOpenConns(1)

	s := NewStore(db)
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing database handle. The schema must already be
// applied, or Migrate called.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies every migration newer than the recorded schema version.
func (s *Store) Migrate() error {
	version := 0
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check schema version: %w", err)
	}
	if exists > 0 {
		if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
	}

	for i := version; i < len(migrations.All); i++ {
		if _, err := s.db.Exec(migrations.All[i]); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}

// StartRun inserts a running record and sets its ID and StartedAt.
func (s *Store) StartRun(r *Run) error {
	r.Status = StatusRunning
	r.StartedAt = s.now()

	result, err := s.db.Exec(`
		INSERT INTO runs (trigger, status, started_at)
		VALUES (?, ?, ?)`,
		r.Trigger, r.Status, r.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// FinishRun stores the final status and totals of r.
func (s *Store) FinishRun(r *Run) error {
	finished := s.now()
	result, err := s.db.Exec(`
		UPDATE runs SET status = ?, finished_at = ?, items = ?, created = ?, renamed = ?,
			updated = ?, orphaned = ?, errors = ?, message = ?
		WHERE id = ?`,
		r.Status, finished, r.Items, r.Created, r.Renamed,
		r.Updated, r.Orphaned, r.Errors, r.Message, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update run %d: %w", r.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run %d: %w", r.ID, err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	r.FinishedAt = &finished
	return nil
}

// AddChanges records file operations for a run in one transaction.
func (s *Store) AddChanges(runID int64, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO changes (run_id, media_type, old_name, new_name, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert change: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := s.now()
	for _, c := range changes {
		if _, err := stmt.Exec(runID, c.MediaType, c.OldName, c.NewName, c.Reason, now); err != nil {
			return fmt.Errorf("insert change: %w", err)
		}
	}
	return tx.Commit()
}

// GetRun returns a run by ID.
func (s *Store) GetRun(id int64) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return r, err
}

// ListRuns returns runs matching the filter, most recent first.
func (s *Store) ListRuns(f RunFilter) ([]*Run, error) {
	var conditions []string
	var args []any

	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}
	if f.Trigger != nil {
		conditions = append(conditions, "trigger = ?")
		args = append(args, *f.Trigger)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + runColumns + ` FROM runs ` + whereClause + ` ORDER BY started_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return results, nil
}

// ListChanges returns the changes of a run in insertion order.
func (s *Store) ListChanges(runID int64) ([]*Change, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, media_type, old_name, new_name, reason, created_at
		FROM changes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Change
	for rows.Next() {
		c := &Change{}
		if err := rows.Scan(&c.ID, &c.RunID, &c.MediaType, &c.OldName, &c.NewName, &c.Reason, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changes: %w", err)
	}
	return results, nil
}

// LastCompleted returns the most recent completed run, or nil.
func (s *Store) LastCompleted() (*Run, error) {
	status := StatusCompleted
	runs, err := s.ListRuns(RunFilter{Status: &status, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// Prune deletes runs (and their changes) that started before cutoff.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return result.RowsAffected()
}

const runColumns = `id, trigger, status, started_at, finished_at, items, created, renamed, updated, orphaned, errors, message`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	r := &Run{}
	var finished sql.NullTime
	err := row.Scan(&r.ID, &r.Trigger, &r.Status, &r.StartedAt, &finished,
		&r.Items, &r.Created, &r.Renamed, &r.Updated, &r.Orphaned, &r.Errors, &r.Message)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return r, nil
}
