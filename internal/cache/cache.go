// Package cache persists reduced skeletons keyed by a content hash of
// the source bytes, so unchanged files are not re-reduced across runs.
// The store is a per-checkout SQLite database under .smartcontext/.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS skeletons (
    hash TEXT PRIMARY KEY,
    rel_path TEXT NOT NULL,
    skeleton TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_skeletons_path ON skeletons(rel_path);
`

// DefaultPath returns the cache location for a scanned root.
func DefaultPath(root string) string {
	return filepath.Join(root, ".smartcontext", "skeletons.db")
}

// Store is the skeleton cache.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the cache database at the given path.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// WAL keeps concurrent watch/copy invocations from blocking each other.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Fresh database or missing table either way: create the schema.
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("setting schema version: %w", err)
		}
		return nil
	}

	if version < schemaVersion {
		// Cached skeletons are cheap to recompute; drop and recreate.
		if _, err := db.Exec("DELETE FROM skeletons"); err != nil {
			return fmt.Errorf("clearing stale cache: %w", err)
		}
		if _, err := db.Exec("UPDATE schema_version SET version = ?", schemaVersion); err != nil {
			return fmt.Errorf("updating schema version: %w", err)
		}
	}
	return nil
}

// Hash returns the content key for source bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached skeleton for a content hash. Any read failure
// is treated as a miss; the caller recomputes.
func (s *Store) Get(hash string) (string, bool) {
	var skeleton string
	err := s.db.QueryRow("SELECT skeleton FROM skeletons WHERE hash = ?", hash).Scan(&skeleton)
	if err != nil {
		return "", false
	}
	return skeleton, true
}

// Put stores a skeleton under its content hash, replacing any previous
// entry for the same hash.
func (s *Store) Put(hash, relPath, skeleton string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO skeletons (hash, rel_path, skeleton, created_at) VALUES (?, ?, ?, ?)",
		hash, relPath, skeleton, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("storing skeleton: %w", err)
	}
	return nil
}

// DeleteByPath removes all entries recorded for a relative path. Used
// by watch mode when a file is removed or renamed.
func (s *Store) DeleteByPath(relPath string) error {
	_, err := s.db.Exec("DELETE FROM skeletons WHERE rel_path = ?", relPath)
	return err
}

// Stats describes the cache contents.
type Stats struct {
	Entries   int   `json:"entries"`
	SizeBytes int64 `json:"size_bytes"`
}

// Stats returns entry count and on-disk size.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM skeletons").Scan(&st.Entries); err != nil {
		return Stats{}, fmt.Errorf("counting entries: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	return st, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
