package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/datapull/internal/model"
)

// FileName is the name of the history database inside the data directory.
const FileName = "datapull.db"

// HistoryDB stores pull records in SQLite.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
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

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
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
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pulls (
		id TEXT PRIMARY KEY,
		dataset TEXT NOT NULL,
		source TEXT NOT NULL,
		url TEXT,
		format TEXT,
		content_type TEXT,
		size INTEGER DEFAULT 0,
		digest TEXT,
		row_count INTEGER DEFAULT 0,
		column_names TEXT,
		steps TEXT,
		error TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pulls_dataset ON pulls(dataset);
	CREATE INDEX IF NOT EXISTS idx_pulls_started ON pulls(started_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SavePull stores a pull report. Saving the same ID twice replaces the
// earlier record.
func (hdb *HistoryDB) SavePull(ctx context.Context, report *model.PullReport) error {
	columnsJSON, err := json.Marshal(report.Columns)
	if err != nil {
		return fmt.Errorf("failed to serialize columns: %w", err)
	}
	stepsJSON, err := json.Marshal(report.PerformedSteps)
	if err != nil {
		return fmt.Errorf("failed to serialize steps: %w", err)
	}

	query := `
	INSERT INTO pulls (id, dataset, source, url, format, content_type, size, digest,
		row_count, column_names, steps, error, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		url = excluded.url,
		format = excluded.format,
		content_type = excluded.content_type,
		size = excluded.size,
		digest = excluded.digest,
		row_count = excluded.row_count,
		column_names = excluded.column_names,
		steps = excluded.steps,
		error = excluded.error,
		finished_at = excluded.finished_at
	`

	_, err = hdb.db.ExecContext(ctx, query,
		report.ID,
		report.Dataset,
		report.Source,
		report.URL,
		report.Format,
		report.ContentType,
		report.Size,
		report.Digest,
		report.Rows,
		string(columnsJSON),
		string(stepsJSON),
		report.ErrorMessage,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save pull: %w", err)
	}

	return nil
}

const selectPulls = `
	SELECT id, dataset, source, url, format, content_type, size, digest,
		row_count, column_names, steps, error, started_at, finished_at
	FROM pulls
`

// ListPulls returns recorded pulls, newest first. An empty dataset lists
// every dataset; a limit of zero or less means no limit.
func (hdb *HistoryDB) ListPulls(ctx context.Context, dataset string, limit int) ([]*model.PullReport, error) {
	query := selectPulls
	var args []any
	if dataset != "" {
		query += " WHERE dataset = ?"
		args = append(args, dataset)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pulls: %w", err)
	}
	defer rows.Close()

	var pulls []*model.PullReport
	for rows.Next() {
		p, err := scanPull(rows)
		if err != nil {
			return nil, err
		}
		pulls = append(pulls, p)
	}

	return pulls, rows.Err()
}

// LatestPull returns the most recent successful pull of dataset, or nil
// when there is none.
func (hdb *HistoryDB) LatestPull(ctx context.Context, dataset string) (*model.PullReport, error) {
	query := selectPulls + `
	WHERE dataset = ? AND (error IS NULL OR error = '')
	ORDER BY started_at DESC
	LIMIT 1
	`

	p, err := scanPull(hdb.db.QueryRowContext(ctx, query, dataset))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPull(s scanner) (*model.PullReport, error) {
	var (
		p                                        model.PullReport
		url, format, contentType, digest, errMsg sql.NullString
		columnsJSON, stepsJSON                   sql.NullString
		startedAt                                string
		finishedAt                               sql.NullString
	)

	err := s.Scan(&p.ID, &p.Dataset, &p.Source, &url, &format, &contentType, &p.Size, &digest,
		&p.Rows, &columnsJSON, &stepsJSON, &errMsg, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan pull: %w", err)
	}

	p.URL = url.String
	p.Format = format.String
	p.ContentType = contentType.String
	p.Digest = digest.String
	p.ErrorMessage = errMsg.String
	p.StartedAt = parseTimestamp(startedAt)
	p.FinishedAt = parseTimestamp(finishedAt.String)

	p.Columns = []string{}
	if columnsJSON.Valid && columnsJSON.String != "" {
		if err := json.Unmarshal([]byte(columnsJSON.String), &p.Columns); err != nil {
			p.Columns = []string{}
		}
	}
	p.PerformedSteps = []string{}
	if stepsJSON.Valid && stepsJSON.String != "" {
		if err := json.Unmarshal([]byte(stepsJSON.String), &p.PerformedSteps); err != nil {
			p.PerformedSteps = []string{}
		}
	}

	return &p, nil
}

// timestampLayout is fixed-width so that text ordering is chronological.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTimestamp stores times in UTC. The zero time is stored as an empty
// string.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
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
