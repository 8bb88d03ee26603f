// Package database is the SQLite journal of apply runs and the operations
// each run executed.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Nomadcxx/jellyfix/internal/paths"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when no run matches an id or id prefix
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRun is returned when an id prefix matches more than one run
var ErrAmbiguousRun = errors.New("run id prefix is ambiguous")

// Journal is the database handle
type Journal struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens or creates the journal at the default location
func Open() (*Journal, error) {
	dbPath, err := paths.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}
	return OpenPath(dbPath)
}

// OpenPath opens or creates the journal at a specific path
func OpenPath(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL so `history` can read while an apply is writing
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return open(db, path)
}

// OpenInMemory opens an in-memory journal for testing
func OpenInMemory() (*Journal, error) {
	db, err := sql.Open("sqlite", ":memory:?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// every pooled connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)
	return open(db, ":memory:")
}

func open(db *sql.DB, path string) (*Journal, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	j := &Journal{db: db, path: path}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return j, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the filesystem path to the database file
func (j *Journal) Path() string {
	return j.path
}

// SchemaVersion returns the applied schema version
func (j *Journal) SchemaVersion() (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return schemaVersion(j.db)
}
