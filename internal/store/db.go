package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotInitialized is returned when the journal tables do not exist yet.
var ErrNotInitialized = errors.New("run journal not initialized; no install or restore has been recorded")

// connPragmas are applied to the journal connection in order.
var connPragmas = []struct {
	stmt string
	what string
}{
	{"PRAGMA foreign_keys = ON", "enable foreign keys"},
	{"PRAGMA journal_mode = WAL", "enable WAL mode"},
	// Concurrent rebfix runs wait for the write lock instead of failing.
	{"PRAGMA busy_timeout = 5000", "set busy timeout"},
}

// Store is the SQLite journal of install and restore runs.
type Store struct {
	db *sql.DB
}

// New opens the journal at dbPath. The tables are not created; call
// CreateSchema before recording. ":memory:" opens a private in-memory
// journal for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run journal %s: %w", dbPath, err)
	}

	// One connection: sqlite allows a single writer, and a second connection
	// would open a separate ":memory:" database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range connPragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to %s: %w", p.what, err)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the journal connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// CreateSchema creates the journal tables and indexes if they are missing.
func (s *Store) CreateSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}
	return nil
}

// wrapQueryErr maps a missing-table error to ErrNotInitialized.
func wrapQueryErr(err error, format string, args ...any) error {
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: %v", ErrNotInitialized, err)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
