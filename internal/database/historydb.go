package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pageocr/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "history.db"

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB records conversion runs in SQLite.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now is the clock used for timestamps.
	now func() time.Time
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input TEXT NOT NULL,
		fingerprint TEXT NOT NULL DEFAULT '',
		engine TEXT NOT NULL DEFAULT '',
		out_dir TEXT NOT NULL DEFAULT '',
		first_page INTEGER NOT NULL DEFAULT 0,
		last_page INTEGER NOT NULL DEFAULT 0,
		total_pages INTEGER NOT NULL DEFAULT 0,
		pages_done INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		finished_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// StartRun inserts run with status running. An empty ID is replaced by a
// new UUID and a zero StartedAt by the current time; both are written back
// to run.
func (h *HistoryDB) StartRun(ctx context.Context, run *model.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = h.now()
	}
	run.Status = model.RunRunning

	query := `
	INSERT INTO runs (id, input, fingerprint, engine, out_dir, first_page, last_page, total_pages, pages_done, status, started_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := h.db.ExecContext(ctx, query,
		run.ID, run.Input, run.Fingerprint, run.Engine, run.OutDir,
		run.FirstPage, run.LastPage, run.TotalPages, run.PagesDone,
		run.Status.String(), formatTimestamp(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// UpdateProgress records how many pages of a running run are done.
func (h *HistoryDB) UpdateProgress(ctx context.Context, id string, pagesDone int) error {
	res, err := h.db.ExecContext(ctx, `UPDATE runs SET pages_done = ? WHERE id = ?`, pagesDone, id)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return requireRow(res, id)
}

// FinishRun stores the final state of run. A zero FinishedAt is replaced by
// the current time.
func (h *HistoryDB) FinishRun(ctx context.Context, run *model.Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = h.now()
	}

	query := `
	UPDATE runs
	SET first_page = ?, last_page = ?, total_pages = ?, pages_done = ?,
		status = ?, error = ?, finished_at = ?
	WHERE id = ?
	`

	res, err := h.db.ExecContext(ctx, query,
		run.FirstPage, run.LastPage, run.TotalPages, run.PagesDone,
		run.Status.String(), run.Error, formatTimestamp(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return requireRow(res, run.ID)
}

// GetRun returns the run with the given ID, or ErrRunNotFound.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := h.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	return h.queryRuns(ctx, selectRuns+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limitArg(limit))
}

// RunsForFingerprint returns runs over documents with the given contents,
// newest first.
func (h *HistoryDB) RunsForFingerprint(ctx context.Context, fingerprint string, limit int) ([]model.Run, error) {
	return h.queryRuns(ctx,
		selectRuns+` WHERE fingerprint = ? ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		fingerprint, limitArg(limit))
}

// selectRuns lists the columns in scanRun order.
const selectRuns = `
	SELECT id, input, fingerprint, engine, out_dir, first_page, last_page, total_pages,
		pages_done, status, error, started_at, finished_at
	FROM runs`

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (h *HistoryDB) queryRuns(ctx context.Context, query string, args ...any) ([]model.Run, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]model.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

func scanRun(row rowScanner) (*model.Run, error) {
	var (
		run      model.Run
		status   string
		started  string
		finished sql.NullString
	)

	err := row.Scan(
		&run.ID, &run.Input, &run.Fingerprint, &run.Engine, &run.OutDir,
		&run.FirstPage, &run.LastPage, &run.TotalPages, &run.PagesDone,
		&status, &run.Error, &started, &finished,
	)
	if err != nil {
		return nil, err
	}

	run.Status = model.ParseRunStatus(status)
	run.StartedAt = parseTimestamp(started)
	if finished.Valid {
		run.FinishedAt = parseTimestamp(finished.String)
	}
	return &run, nil
}

// requireRow turns an update that matched nothing into ErrRunNotFound.
func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// limitArg maps "no limit" to SQLite's -1.
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// timestampLayout is fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTimestamp stores times in UTC with timestampLayout.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
