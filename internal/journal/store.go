package journal

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"megacut/internal/config"
	"megacut/internal/render"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		versions = append(versions, entry.Name())
	}
	sort.Strings(versions)

	migrations := make([]migration, 0, len(versions))
	for _, name := range versions {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	return migrations, nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, migration := range migrations {
		var count int
		row := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", migration.version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, migration.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", migration.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", migration.version); err != nil {
			return fmt.Errorf("record migration %s: %w", migration.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

// RecordRunStart inserts a run row when rendering begins.
func (s *Store) RecordRunStart(ctx context.Context, runID string, started time.Time, sceneCount, chunkCount int) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (run_id, started_at, scene_count, chunk_count) VALUES (?, ?, ?, ?)`,
		runID,
		started.UTC().Format(time.RFC3339Nano),
		sceneCount,
		chunkCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordChunk upserts one chunk outcome as soon as it is known.
func (s *Store) RecordChunk(ctx context.Context, runID string, chunk render.ChunkReport) error {
	var errText sql.NullString
	if chunk.Err != nil {
		errText = sql.NullString{String: chunk.Err.Error(), Valid: true}
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO chunks (run_id, chunk_index, scene_count, duration_seconds, status, output_path, error, took_seconds)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(run_id, chunk_index) DO UPDATE SET
             status = excluded.status,
             output_path = excluded.output_path,
             error = excluded.error,
             took_seconds = excluded.took_seconds`,
		runID,
		chunk.Index,
		chunk.SceneCount,
		chunk.Duration.Seconds(),
		string(chunk.Status),
		chunk.OutputPath,
		errText,
		chunk.Took.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("insert chunk %d: %w", chunk.Index, err)
	}
	return nil
}

// RecordRunFinish finalizes a run row with its aggregate outcome.
func (s *Store) RecordRunFinish(ctx context.Context, report render.RunReport) error {
	cancelled := 0
	if report.Cancelled {
		cancelled = 1
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET finished_at = ?, completed_chunks = ?, failed_chunks = ?, cancelled = ? WHERE run_id = ?`,
		report.Finished.UTC().Format(time.RFC3339Nano),
		report.CompletedChunks(),
		report.FailedChunks(),
		cancelled,
		report.RunID,
	)
	if err != nil {
		return fmt.Errorf("finalize run: %w", err)
	}
	return nil
}

// RunRow is one persisted run summary.
type RunRow struct {
	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	SceneCount      int
	ChunkCount      int
	CompletedChunks int
	FailedChunks    int
	Cancelled       bool
}

// ChunkRow is one persisted chunk outcome.
type ChunkRow struct {
	Index      int
	SceneCount int
	Duration   time.Duration
	Status     string
	OutputPath string
	Error      string
	Took       time.Duration
}

// RecentRuns lists the newest runs first, up to limit.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, started_at, COALESCE(finished_at, ''), scene_count, chunk_count, completed_chunks, failed_chunks, cancelled
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRow
	for rows.Next() {
		var run RunRow
		var started, finished string
		var cancelled int
		if err := rows.Scan(&run.RunID, &started, &finished, &run.SceneCount, &run.ChunkCount, &run.CompletedChunks, &run.FailedChunks, &cancelled); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		run.Cancelled = cancelled != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ChunksForRun lists a run's chunk outcomes in index order.
func (s *Store) ChunksForRun(ctx context.Context, runID string) ([]ChunkRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT chunk_index, scene_count, duration_seconds, status, COALESCE(output_path, ''), COALESCE(error, ''), took_seconds
         FROM chunks WHERE run_id = ? ORDER BY chunk_index`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []ChunkRow
	for rows.Next() {
		var chunk ChunkRow
		var durationSeconds, tookSeconds float64
		if err := rows.Scan(&chunk.Index, &chunk.SceneCount, &durationSeconds, &chunk.Status, &chunk.OutputPath, &chunk.Error, &tookSeconds); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunk.Duration = time.Duration(durationSeconds * float64(time.Second))
		chunk.Took = time.Duration(tookSeconds * float64(time.Second))
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}
