// Package store persists price bars, exchange rates, money-supply series,
// news and recommendations in a local SQLite database. A Store serves the
// same collaborator interfaces as the live sources, so evaluations can run
// offline from the last snapshot.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNoData is returned when a requested series has no stored rows.
var ErrNoData = errors.New("no stored data")

// dateLayout is the storage format of daily dates.
const dateLayout = time.DateOnly

// Store wraps the SQLite connection.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers from concurrent refreshes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS historical_prices (
			symbol    TEXT NOT NULL,
			date      TEXT NOT NULL,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL NOT NULL,
			adj_close REAL,
			volume    INTEGER,
			currency  TEXT,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE TABLE IF NOT EXISTS exchange_rates (
			pair  TEXT NOT NULL,
			date  TEXT NOT NULL,
			open  REAL,
			high  REAL,
			low   REAL,
			close REAL NOT NULL,
			PRIMARY KEY (pair, date)
		)`,
		`CREATE TABLE IF NOT EXISTS monetary_series (
			series_id TEXT NOT NULL,
			region    TEXT NOT NULL,
			date      TEXT NOT NULL,
			value     REAL NOT NULL,
			PRIMARY KEY (series_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS news_articles (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			category        TEXT NOT NULL,
			title_key       TEXT NOT NULL,
			title           TEXT NOT NULL,
			summary         TEXT,
			source          TEXT,
			url             TEXT,
			published_at    INTEGER,
			sentiment_score REAL NOT NULL,
			fetched_at      INTEGER NOT NULL,
			UNIQUE (category, title_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_published ON news_articles(category, published_at)`,
		`CREATE TABLE IF NOT EXISTS recommendations_log (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT,
			index_id       TEXT NOT NULL,
			risk_tolerance TEXT NOT NULL,
			category       TEXT NOT NULL,
			score          INTEGER NOT NULL,
			confidence     REAL NOT NULL,
			reasons        TEXT NOT NULL,
			risk_factors   TEXT NOT NULL,
			factors        TEXT,
			evaluated_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recs_run ON recommendations_log(run_id)`,
		`CREATE TABLE IF NOT EXISTS metadata (
			key        TEXT PRIMARY KEY,
			value      TEXT,
			updated_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
