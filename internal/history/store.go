// Package history persists per-run statistics in a SQLite database so
// past flattening runs can be listed and compared.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/flatpack/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Run is a single recorded flattening run.
type Run struct {
	ID         string
	InputDir   string
	OutputDir  string
	Processed  int
	Converted  int
	Ignored    int
	Errors     int
	Collisions int
	TotalBytes int64
	Duration   time.Duration
	StartedAt  time.Time
}

// NewRun builds a Run record from final statistics.
func NewRun(id, inputDir, outputDir string, stats models.RunStats) Run {
	return Run{
		ID:         id,
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Processed:  stats.Processed,
		Converted:  stats.Converted,
		Ignored:    stats.Ignored,
		Errors:     stats.Errors,
		Collisions: stats.Collisions,
		TotalBytes: stats.TotalBytes,
		Duration:   stats.Duration,
		StartedAt:  stats.StartedAt,
	}
}

// Store manages the SQLite database holding run history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a Store and initializes the database schema.
func NewStore(dbPath string) (*Store, error) {
	// Handle in-memory databases (tests).
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath)
	}

	// Ensure the parent directory exists for file-based databases.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath)
}

// openAndInitStore opens the database connection and applies the schema.
func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so subsequent statements wait on locks held by
	// concurrent initialization of the same database file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a SQL statement with exponential backoff on
// "database is locked" errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// RecordRun inserts a run record.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, input_dir, output_dir, processed, converted,
			ignored, errors, collisions, total_bytes, duration_secs, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputDir, run.OutputDir, run.Processed, run.Converted,
		run.Ignored, run.Errors, run.Collisions, run.TotalBytes,
		run.Duration.Seconds(), run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means
// all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, input_dir, output_dir, processed, converted, ignored,
			errors, collisions, total_bytes, duration_secs, started_at
		FROM runs ORDER BY started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var durationSecs float64
		if err := rows.Scan(&run.ID, &run.InputDir, &run.OutputDir,
			&run.Processed, &run.Converted, &run.Ignored, &run.Errors,
			&run.Collisions, &run.TotalBytes, &durationSecs, &run.StartedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(durationSecs * float64(time.Second))
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// Prune deletes all but the newest keep runs. keep <= 0 is a no-op.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}

// Clear deletes all recorded runs.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs")
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
