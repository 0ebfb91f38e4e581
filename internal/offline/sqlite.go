package offline

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists cache buckets in a single SQLite database file,
// so prefetched assets survive restarts the way browser cache storage
// survives page reloads.
type SQLiteStore struct {
	db *sql.DB

	mu   sync.RWMutex
	open string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS buckets (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS entries (
	bucket TEXT NOT NULL,
	key    TEXT NOT NULL,
	status INTEGER NOT NULL,
	header TEXT NOT NULL,
	body   BLOB NOT NULL,
	PRIMARY KEY (bucket, key)
);
`

// NewSQLiteStore opens (creating if necessary) the cache database at
// the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Open(version string) error {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO buckets (name) VALUES (?)`, version); err != nil {
		return fmt.Errorf("failed to open bucket %s: %w", version, err)
	}
	s.mu.Lock()
	s.open = version
	s.mu.Unlock()
	return nil
}

func (s *SQLiteStore) Buckets() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM buckets`)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Purge(keep string) error {
	if _, err := s.db.Exec(`DELETE FROM entries WHERE bucket != ?`, keep); err != nil {
		return fmt.Errorf("failed to purge stale entries: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM buckets WHERE name != ?`, keep); err != nil {
		return fmt.Errorf("failed to purge stale buckets: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(key string) (*Entry, error) {
	s.mu.RLock()
	bucket := s.open
	s.mu.RUnlock()
	if bucket == "" {
		return nil, ErrNoBucket
	}

	var (
		status    int
		headerRaw []byte
		body      []byte
	)
	row := s.db.QueryRow(`SELECT status, header, body FROM entries WHERE bucket = ? AND key = ?`, bucket, key)
	if err := row.Scan(&status, &headerRaw, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var header http.Header
	if err := json.Unmarshal(headerRaw, &header); err != nil {
		return nil, fmt.Errorf("failed to decode cached headers: %w", err)
	}

	return &Entry{Status: status, Header: header, Body: body}, nil
}

func (s *SQLiteStore) Put(key string, e *Entry) error {
	s.mu.RLock()
	bucket := s.open
	s.mu.RUnlock()
	if bucket == "" {
		return ErrNoBucket
	}

	headerRaw, err := json.Marshal(e.Header)
	if err != nil {
		return fmt.Errorf("failed to encode headers: %w", err)
	}

	// INSERT OR REPLACE keeps Put idempotent: overlapping writes for
	// the same key race to last-write-wins.
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO entries (bucket, key, status, header, body) VALUES (?, ?, ?, ?, ?)`,
		bucket, key, e.Status, headerRaw, e.Body,
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
