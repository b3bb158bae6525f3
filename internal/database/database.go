package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"github.com/fvacek/unplayer/internal/logging"
	"github.com/fvacek/unplayer/internal/metrics"
)

// Default timeout for interactive read queries. Scan transactions are
// not bounded by it; their lifetime belongs to the scan.
const defaultTimeout = 5 * time.Second

// Maximum bind parameters per statement, the SQLite default.
const maxStatementParams = 999

// trackColumns is the expected column set of the tracks table. Any
// deviation means the database was written by an incompatible version
// and is dropped.
var trackColumns = []string{
	"id",
	"filePath",
	"modificationTime",
	"title",
	"artist",
	"album",
	"year",
	"trackNumber",
	"discNumber",
	"genre",
	"duration",
	"mediaArt",
}

// Store manages the track index database.
type Store struct {
	db           *sql.DB
	dbPath       string
	createdTable bool
}

// Open opens or creates the track database at dbPath. The parent
// directory is created if missing. Failure to open or to verify the
// schema is fatal for the caller; nothing else in this package is.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logging.Info("Database path: %s", dbPath)

	// WAL keeps reads available while a scan transaction is open on
	// another connection; busy_timeout avoids spurious "database is
	// locked" failures between them.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if err := s.ensureSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after schema failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to verify database schema: %w", err)
	}

	logging.Info("Database initialized at %s", dbPath)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreatedTable reports whether Open had to (re)create the tracks table,
// meaning any previously indexed data is gone.
func (s *Store) CreatedTable() bool {
	return s.createdTable
}

// ensureSchema verifies that the tracks table exists with exactly the
// expected column set, dropping and recreating it otherwise.
func (s *Store) ensureSchema(ctx context.Context) error {
	exists, err := s.tableExists(ctx)
	if err != nil {
		return err
	}

	create := !exists
	if exists {
		matches, err := s.columnsMatch(ctx)
		if err != nil {
			return err
		}
		if !matches {
			logging.Warn("tracks table has an unexpected shape, recreating it")
			if _, err := s.db.ExecContext(ctx, "DROP TABLE tracks"); err != nil {
				return fmt.Errorf("failed to drop tracks table: %w", err)
			}
			create = true
		}
	}

	if create {
		_, err := s.db.ExecContext(ctx, `CREATE TABLE tracks (
			id INTEGER,
			filePath TEXT,
			modificationTime INTEGER,
			title TEXT COLLATE NOCASE,
			artist TEXT COLLATE NOCASE,
			album TEXT COLLATE NOCASE,
			year INTEGER,
			trackNumber INTEGER,
			discNumber TEXT,
			genre TEXT,
			duration INTEGER,
			mediaArt TEXT
		)`)
		if err != nil {
			return fmt.Errorf("failed to create tracks table: %w", err)
		}
		s.createdTable = true
	}

	return nil
}

func (s *Store) tableExists(ctx context.Context) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'tracks'",
	).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	return true, nil
}

func (s *Store) columnsMatch(ctx context.Context) (bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info('tracks')")
	if err != nil {
		return false, fmt.Errorf("failed to read table info: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(trackColumns))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	if len(found) != len(trackColumns) {
		return false, nil
	}
	for _, col := range trackColumns {
		if !found[col] {
			return false, nil
		}
	}
	return true, nil
}

// recordQuery records database query metrics.
func recordQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
