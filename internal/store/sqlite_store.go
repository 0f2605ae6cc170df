// SQLite-backed Storer via ncruces/go-sqlite3's database/sql driver.
// The two logical records are stored as whole JSON values in a two-row
// key-value table; a single version row provides compare-and-swap.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	recordSnippets = "snippets"
	recordGraph    = "graph"
)

// SQLiteStore persists state in a SQLite database.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    version INTEGER NOT NULL
);

INSERT OR IGNORE INTO meta (id, version) VALUES (1, 0);
`

// NewSQLiteStore opens (or creates) a store at the given path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := NewState()

	if err := s.db.QueryRow(`SELECT version FROM meta WHERE id = 1`).Scan(&st.Version); err != nil {
		return nil, fmt.Errorf("store: failed to read version: %w", err)
	}

	if err := s.readRecord(recordSnippets, &st.Snippets); err != nil {
		return nil, err
	}
	if err := s.readRecord(recordGraph, &st.Graph); err != nil {
		return nil, err
	}

	normalize(st)
	return st, nil
}

func (s *SQLiteStore) readRecord(name string, dst any) error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM records WHERE name = ?`, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("store: corrupt %s record: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Save(next *State, expect int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snippetsJSON, err := json.Marshal(next.Snippets)
	if err != nil {
		return fmt.Errorf("store: failed to marshal snippets: %w", err)
	}
	graphJSON, err := json.Marshal(next.Graph)
	if err != nil {
		return fmt.Errorf("store: failed to marshal graph: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE meta SET version = ? WHERE id = 1 AND version = ?`, expect+1, expect)
	if err != nil {
		return fmt.Errorf("store: failed to bump version: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: failed to check version bump: %w", err)
	}
	if n == 0 {
		return ErrVersionConflict
	}

	upsert := `
		INSERT INTO records (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`
	if _, err := tx.Exec(upsert, recordSnippets, string(snippetsJSON)); err != nil {
		return fmt.Errorf("store: failed to write snippets: %w", err)
	}
	if _, err := tx.Exec(upsert, recordGraph, string(graphJSON)); err != nil {
		return fmt.Errorf("store: failed to write graph: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: failed to commit: %w", err)
	}

	next.Version = expect + 1
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time interface check
var _ Storer = (*SQLiteStore)(nil)
