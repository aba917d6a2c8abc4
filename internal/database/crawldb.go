package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/randcrawl/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "randcrawl.db"

// CrawlDB provides SQLite-based storage for findings and crawl errors.
//
// Design decision: a single database file holds every run rather than one
// file per run, so hosts can be queried across runs.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
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
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Workers write concurrently; SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the path of the database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Findings store one successfully fetched URL each
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_date TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		url TEXT NOT NULL,
		hostname TEXT NOT NULL,
		ip_address TEXT,
		status_code INTEGER,
		content_preview TEXT,
		subdirectories TEXT,
		emails TEXT,
		top_keywords TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_date);
	CREATE INDEX IF NOT EXISTS idx_findings_host ON findings(hostname);

	-- Crawl errors store one failed attempt each
	CREATE TABLE IF NOT EXISTS crawl_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_date TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		url TEXT NOT NULL,
		status_code INTEGER,
		kind TEXT NOT NULL,
		error TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_errors_run ON crawl_errors(run_date);
	CREATE INDEX IF NOT EXISTS idx_errors_kind ON crawl_errors(kind);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertFinding stores a finding under runDate.
func (cdb *CrawlDB) InsertFinding(ctx context.Context, runDate string, f *model.Finding) error {
	subdirs, err := json.Marshal(f.Subdirectories)
	if err != nil {
		return fmt.Errorf("failed to serialize subdirectories: %w", err)
	}
	emails, err := json.Marshal(f.Emails)
	if err != nil {
		return fmt.Errorf("failed to serialize emails: %w", err)
	}
	keywords, err := json.Marshal(f.TopKeywords)
	if err != nil {
		return fmt.Errorf("failed to serialize keywords: %w", err)
	}

	query := `
	INSERT INTO findings (run_date, timestamp, url, hostname, ip_address, status_code,
		content_preview, subdirectories, emails, top_keywords)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = cdb.db.ExecContext(ctx, query,
		runDate,
		f.Timestamp.UTC().Format(time.RFC3339Nano),
		f.URL,
		f.Hostname,
		f.IPAddress,
		f.StatusCode,
		f.ContentPreview,
		string(subdirs),
		string(emails),
		string(keywords),
	)
	if err != nil {
		return fmt.Errorf("failed to insert finding: %w", err)
	}
	return nil
}

// InsertError stores a failed attempt under runDate.
func (cdb *CrawlDB) InsertError(ctx context.Context, runDate string, r *model.ErrorRecord) error {
	var status sql.NullInt64
	if r.StatusCode != nil {
		status = sql.NullInt64{Int64: int64(*r.StatusCode), Valid: true}
	}

	query := `
	INSERT INTO crawl_errors (run_date, timestamp, url, status_code, kind, error)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := cdb.db.ExecContext(ctx, query,
		runDate,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.URL,
		status,
		r.Kind.String(),
		r.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert crawl error: %w", err)
	}
	return nil
}

// ListRuns returns the distinct run dates, newest first.
func (cdb *CrawlDB) ListRuns(ctx context.Context) ([]string, error) {
	query := `
	SELECT run_date FROM findings
	UNION
	SELECT run_date FROM crawl_errors
	ORDER BY run_date DESC
	`
	return cdb.queryStrings(ctx, query)
}

// ListHosts returns the distinct hostnames with findings in runDate.
func (cdb *CrawlDB) ListHosts(ctx context.Context, runDate string) ([]string, error) {
	query := `
	SELECT DISTINCT hostname FROM findings
	WHERE run_date = ?
	ORDER BY hostname
	`
	return cdb.queryStrings(ctx, query, runDate)
}

func (cdb *CrawlDB) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindingsByRun returns the findings of runDate in insertion order.
func (cdb *CrawlDB) FindingsByRun(ctx context.Context, runDate string) ([]model.Finding, error) {
	return cdb.queryFindings(ctx, "WHERE run_date = ? ORDER BY id", runDate)
}

// FindingsByHost returns every finding of hostname across all runs, newest first.
func (cdb *CrawlDB) FindingsByHost(ctx context.Context, hostname string) ([]model.Finding, error) {
	return cdb.queryFindings(ctx, "WHERE hostname = ? ORDER BY timestamp DESC, id DESC", hostname)
}

func (cdb *CrawlDB) queryFindings(ctx context.Context, where string, args ...any) ([]model.Finding, error) {
	query := `
	SELECT timestamp, url, hostname, ip_address, status_code, content_preview,
		subdirectories, emails, top_keywords
	FROM findings
	` + where

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var results []model.Finding
	for rows.Next() {
		var f model.Finding
		var timestamp, subdirs, emails, keywords string

		err := rows.Scan(
			&timestamp,
			&f.URL,
			&f.Hostname,
			&f.IPAddress,
			&f.StatusCode,
			&f.ContentPreview,
			&subdirs,
			&emails,
			&keywords,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}

		f.Timestamp = parseTimestamp(timestamp)
		if err := unmarshalColumns(
			column{subdirs, &f.Subdirectories},
			column{emails, &f.Emails},
			column{keywords, &f.TopKeywords},
		); err != nil {
			return nil, err
		}
		results = append(results, f)
	}
	return results, rows.Err()
}

// ErrorsByRun returns the crawl errors of runDate in insertion order.
func (cdb *CrawlDB) ErrorsByRun(ctx context.Context, runDate string) ([]model.ErrorRecord, error) {
	query := `
	SELECT timestamp, url, status_code, kind, error
	FROM crawl_errors
	WHERE run_date = ?
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, runDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawl errors: %w", err)
	}
	defer rows.Close()

	var results []model.ErrorRecord
	for rows.Next() {
		var r model.ErrorRecord
		var timestamp, kind string
		var status sql.NullInt64

		if err := rows.Scan(&timestamp, &r.URL, &status, &kind, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan crawl error: %w", err)
		}
		r.Timestamp = parseTimestamp(timestamp)
		if status.Valid {
			code := int(status.Int64)
			r.StatusCode = &code
		}
		if err := r.Kind.UnmarshalText([]byte(kind)); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// CountErrors returns the number of crawl errors of runDate per error kind.
func (cdb *CrawlDB) CountErrors(ctx context.Context, runDate string) (map[string]int, error) {
	query := `
	SELECT kind, COUNT(*) FROM crawl_errors
	WHERE run_date = ?
	GROUP BY kind
	`

	rows, err := cdb.db.QueryContext(ctx, query, runDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count crawl errors: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// column pairs a JSON text column with its destination.
type column struct {
	raw string
	dst any
}

func unmarshalColumns(cols ...column) error {
	for _, c := range cols {
		if c.raw == "" || c.raw == "null" {
			continue
		}
		if err := json.Unmarshal([]byte(c.raw), c.dst); err != nil {
			return fmt.Errorf("failed to parse column: %w", err)
		}
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
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
