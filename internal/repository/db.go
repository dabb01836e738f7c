package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS source_files (
	id           TEXT PRIMARY KEY,
	path         TEXT NOT NULL UNIQUE,
	filename     TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	file_size    INTEGER NOT NULL,
	mod_time     TIMESTAMP NOT NULL,
	parse_status TEXT NOT NULL,
	parse_error  TEXT NOT NULL DEFAULT '',
	paper_id     TEXT,
	scanned_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_source_files_hash ON source_files(content_hash);

CREATE TABLE IF NOT EXISTS papers (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	authors          TEXT NOT NULL DEFAULT '',
	year             INTEGER NOT NULL DEFAULT 0,
	venue            TEXT NOT NULL DEFAULT '',
	doi              TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL DEFAULT '',
	volume           TEXT NOT NULL DEFAULT '',
	issue            TEXT NOT NULL DEFAULT '',
	pages            TEXT NOT NULL DEFAULT '',
	entry_type       TEXT NOT NULL DEFAULT 'article',
	publication_type TEXT NOT NULL DEFAULT 'other',
	bib_key          TEXT NOT NULL DEFAULT '',
	confidence       REAL NOT NULL DEFAULT 0,
	source           TEXT NOT NULL DEFAULT 'none',
	created_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi);

CREATE TABLE IF NOT EXISTS patents (
	id               TEXT PRIMARY KEY,
	patent_number    TEXT NOT NULL,
	grant_number     TEXT NOT NULL DEFAULT '',
	title            TEXT NOT NULL DEFAULT '',
	inventors        TEXT NOT NULL DEFAULT '',
	patentee         TEXT NOT NULL DEFAULT '',
	application_date TEXT NOT NULL DEFAULT '',
	grant_date       TEXT NOT NULL DEFAULT '',
	patent_type      TEXT NOT NULL DEFAULT '发明',
	file_path        TEXT NOT NULL UNIQUE,
	created_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS softwares (
	id                  TEXT PRIMARY KEY,
	software_name       TEXT NOT NULL DEFAULT '',
	version             TEXT NOT NULL DEFAULT '',
	registration_number TEXT NOT NULL DEFAULT '',
	copyright_holder    TEXT NOT NULL DEFAULT '',
	development_date    TEXT NOT NULL DEFAULT '',
	file_path           TEXT NOT NULL UNIQUE,
	created_at          TIMESTAMP NOT NULL
);
`

// Open opens (or creates) the SQLite catalog file and bootstraps the schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	logger.Info("opening database", "path", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("failed to open database", "path", path, "error", err)
		return nil, err
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.Error("failed to bootstrap schema", "error", err)
		_ = db.Close()
		return nil, err
	}
	logger.Info("database ready")
	return db, nil
}

// Close closes the database gracefully.
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Info("database closed")
}

// HealthCheck pings the database to catch path/permission issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
